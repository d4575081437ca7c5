// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

import (
	"github.com/diffeo/go-draftstore/restdata"
)

// shapeItem filters a raw item down to the fields a schema declares
// for the request's display context, sanitizing each value along the
// way.  A field that is present in the raw item but holds nil stays
// present, as null.  If the request named specific fields, the result
// is further restricted to those.  Links pass through untouched.
func shapeItem(schema restdata.Schema, ctx *context, raw restdata.Item) restdata.Item {
	item := restdata.Item{Fields: make(map[string]interface{})}
	for _, f := range schema.Fields {
		if !f.InContext(ctx.Display) {
			continue
		}
		value, present := raw.Fields[f.Name]
		if !present {
			continue
		}
		if value == nil {
			item.Fields[f.Name] = nil
			continue
		}
		item.Fields[f.Name] = restdata.SanitizeValue(f, value)
	}
	if len(ctx.Fields) > 0 {
		restricted := make(map[string]interface{})
		for _, name := range ctx.Fields {
			if value, present := item.Fields[name]; present {
				restricted[name] = value
			}
		}
		item.Fields = restricted
	}
	item.Links = raw.Links
	return item
}

// filterFields keeps only the keys of an uploaded dictionary that an
// argument schema declares.
func filterFields(args restdata.Schema, fields map[string]interface{}) map[string]interface{} {
	result := make(map[string]interface{})
	for _, f := range args.Fields {
		if value, present := fields[f.Name]; present {
			result[f.Name] = value
		}
	}
	return result
}
