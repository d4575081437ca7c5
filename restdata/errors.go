// Copyright 2016-2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strconv"

	"github.com/diffeo/go-draftstore/draftstore"
)

// ErrorStatus describes errors that correspond to specific HTTP status
// codes.
type ErrorStatus interface {
	// HTTPStatus returns the HTTP status code for this error.
	HTTPStatus() int
}

// ErrUnsupportedMediaType is returned from Decode() if the provided
// Content-Type: is unrecognized.  This translates directly into the
// equivalent HTTP 415 error.
type ErrUnsupportedMediaType struct {
	Type string
}

func (e ErrUnsupportedMediaType) Error() string {
	return fmt.Sprintf("Unsupported media type %q", e.Type)
}

// HTTPStatus returns a fixed 415 Unsupported Media Type error code.
func (e ErrUnsupportedMediaType) HTTPStatus() int {
	return http.StatusUnsupportedMediaType
}

// ErrNotFound is a wrapper error that indicates that, due to the
// embedded error, a REST service should return a 404 Not Found error.
type ErrNotFound struct {
	Err error
}

func (e ErrNotFound) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 404 Not Found error code.
func (e ErrNotFound) HTTPStatus() int {
	return http.StatusNotFound
}

// ErrBadRequest is returned as an error when there is an error decoding
// HTTP headers or the request body, or when an uploaded dictionary
// fails argument validation.
type ErrBadRequest struct {
	Err error
}

func (e ErrBadRequest) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 400 Bad Request HTTP status code.
func (e ErrBadRequest) HTTPStatus() int {
	return http.StatusBadRequest
}

// ErrForbidden is a wrapper error that indicates that, due to the
// embedded error, a REST service should return a 403 Forbidden error.
// Permission checks that fail with an ordinary error are reported
// this way.
type ErrForbidden struct {
	Err error
}

func (e ErrForbidden) Error() string {
	return e.Err.Error()
}

// HTTPStatus returns a fixed 403 Forbidden error code.
func (e ErrForbidden) HTTPStatus() int {
	return http.StatusForbidden
}

// FromError populates an ErrorResponse to fill in its fields based
// on an error value.  This remaps the well-known Draftstore errors
// to specific e.Error codes.
func (e *ErrorResponse) FromError(err error) {
	switch err {
	case draftstore.ErrNoAuthor:
		e.Error = "ErrNoAuthor"
	case draftstore.ErrBadAuthor:
		e.Error = "ErrBadAuthor"
	case draftstore.ErrBadStatus:
		e.Error = "ErrBadStatus"
	case draftstore.ErrGone:
		e.Error = "ErrGone"
	}
	switch et := err.(type) {
	case draftstore.ErrNoSuchDocument:
		e.Error = "ErrNoSuchDocument"
		e.Value = strconv.FormatInt(et.ID, 10)
	case draftstore.ErrNoSuchAutosave:
		e.Error = "ErrNoSuchAutosave"
		if et.Author != "" {
			e.Value = et.Author
		} else {
			e.Value = strconv.FormatInt(et.ID, 10)
		}
	case ErrNotFound:
		// Discard this wrapper and return the embedded error
		e.FromError(et.Err)
	case ErrBadRequest:
		e.FromError(et.Err)
	case ErrForbidden:
		e.FromError(et.Err)
	}
}

// ToError converts e back to a Draftstore error, if that is possible.
// If not, returns a plain error with e.Message text.
func (e *ErrorResponse) ToError() error {
	switch e.Error {
	case "ErrNoAuthor":
		return draftstore.ErrNoAuthor
	case "ErrBadAuthor":
		return draftstore.ErrBadAuthor
	case "ErrBadStatus":
		return draftstore.ErrBadStatus
	case "ErrGone":
		return draftstore.ErrGone
	case "ErrNoSuchDocument":
		id, err := strconv.ParseInt(e.Value, 10, 64)
		if err != nil {
			return errors.New(e.Message)
		}
		return draftstore.ErrNoSuchDocument{ID: id}
	case "ErrNoSuchAutosave":
		// A numeric value is an ID; anything else is an author.
		id, err := strconv.ParseInt(e.Value, 10, 64)
		if err != nil {
			return draftstore.ErrNoSuchAutosave{Author: e.Value}
		}
		return draftstore.ErrNoSuchAutosave{ID: id}
	default:
		return errors.New(e.Message)
	}
}

// FromPanic populates an error response based on a panic.  Typical use
// is:
//
//	defer func() {
//	    if obj := recovered(); obj != nil {
//	        resp := restdata.ErrorResponse{}
//	        resp.FromPanic(obj)
//	        // write resp out as makes sense
//	    }
//	}
func (e *ErrorResponse) FromPanic(obj interface{}) {
	e.Error = "panic"
	if recoveredError, isError := obj.(error); isError {
		e.Message = recoveredError.Error()
	} else {
		e.Message = fmt.Sprintf("%+v", obj)
	}
	var stack [4096]byte
	len := runtime.Stack(stack[:], false)
	e.Stack = string(stack[:len])
}
