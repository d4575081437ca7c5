// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restserver

// This file contains various HTTP-related helpers.  I sort of suspect
// most of them belong in some sort of standard library I haven't
// immediately found.

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/gorilla/mux"
)

type urlBuilder struct {
	Router *mux.Router
	Params []string
	Error  error
}

func buildURLs(router *mux.Router, params ...string) *urlBuilder {
	return &urlBuilder{Router: router, Params: params}
}

func (u *urlBuilder) Route(route string) *mux.Route {
	if u.Error != nil {
		return nil
	}
	r := u.Router.Get(route)
	if r == nil {
		u.Error = fmt.Errorf("No such route %q", route)
	}
	return r
}

func (u *urlBuilder) URL(out *string, route string) *urlBuilder {
	var r *mux.Route
	var url *url.URL
	if u.Error == nil {
		r = u.Route(route)
	}
	if u.Error == nil {
		url, u.Error = r.URL(u.Params...)
	}
	if u.Error == nil {
		*out = url.String()
	}
	return u
}

// templatePlaceholder stands in for a URL parameter while generating
// a URI template.  It needs to satisfy the numeric patterns the
// document and autosave routes declare, so it is a (large) number.
const templatePlaceholder = "99999999999"

// Template generates a URI template for a route: its URL with
// {param} placeholders for each of the named parameters.
func (u *urlBuilder) Template(out *string, route string, params ...string) *urlBuilder {
	var r *mux.Route
	var url *url.URL
	if u.Error == nil {
		r = u.Route(route)
	}
	if u.Error == nil {
		pairs := append([]string(nil), u.Params...)
		for i, param := range params {
			pairs = append(pairs, param, templatePlaceholder+strconv.Itoa(i))
		}
		url, u.Error = r.URL(pairs...)
	}
	if u.Error == nil {
		s := url.String()
		for i, param := range params {
			s = strings.Replace(s, templatePlaceholder+strconv.Itoa(i), "{"+param+"}", 1)
		}
		*out = s
	}
	return u
}
