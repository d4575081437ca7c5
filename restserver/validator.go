// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"bytes"
	"encoding/json"

	"github.com/diffeo/go-draftstore/restdata"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

// argsValidator validates uploaded field dictionaries against the
// JSON Schema form of a field schema.  Validators are compiled once,
// at route registration time.
type argsValidator struct {
	args     restdata.Schema
	compiled *jsonschema.Schema
}

// newArgsValidator compiles a field schema into a validator.
func newArgsValidator(args restdata.Schema) (*argsValidator, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	err = compiler.AddResource("args.json", bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	compiled, err := compiler.Compile("args.json")
	if err != nil {
		return nil, err
	}
	return &argsValidator{args: args, compiled: compiled}, nil
}

// mustArgsValidator compiles a field schema into a validator, and
// panics if it cannot.  The schemas in this package are fixed at
// route registration time, so a failure here is a programming error.
func mustArgsValidator(args restdata.Schema) *argsValidator {
	v, err := newArgsValidator(args)
	if err != nil {
		panic(err)
	}
	return v
}

// Schema returns the field schema this validator was compiled from.
func (v *argsValidator) Schema() *restdata.Schema {
	return &v.args
}

// Validate checks an uploaded object against the schema.  Validation
// failures come back as 400 Bad Request.
func (v *argsValidator) Validate(in interface{}) error {
	var fields map[string]interface{}
	switch t := in.(type) {
	case restdata.Item:
		fields = t.Fields
	case restdata.DataDict:
		fields = t
	case map[string]interface{}:
		fields = t
	default:
		return errUnmarshal
	}
	if fields == nil {
		fields = map[string]interface{}{}
	}
	// The compiled schema validates values the way encoding/json
	// decodes them, so round-trip the dictionary first.
	raw, err := json.Marshal(restdata.DataDict(fields))
	if err != nil {
		return restdata.ErrBadRequest{Err: err}
	}
	var doc interface{}
	err = json.Unmarshal(raw, &doc)
	if err != nil {
		return restdata.ErrBadRequest{Err: err}
	}
	err = v.compiled.Validate(doc)
	if err != nil {
		return restdata.ErrBadRequest{Err: err}
	}
	return nil
}
