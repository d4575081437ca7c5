// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

import (
	"bytes"
	"reflect"
	"sort"

	"github.com/mitchellh/mapstructure"
	"github.com/ugorji/go/codec"
)

// Link describes a single hypermedia link target.
type Link struct {
	// Href is the target URL.
	Href string `json:"href" mapstructure:"href"`

	// Templated is set if Href is an RFC 6570 URI template rather
	// than a literal URL.
	Templated bool `json:"templated,omitempty" mapstructure:"templated"`
}

// Links maps link relations, such as "self", "collection", and
// "parent", to their targets.  A relation can have more than one
// target.
type Links map[string][]Link

// Copy returns a copy of this link set.  The Link values are copied;
// mutating the result does not affect the original.
func (l Links) Copy() Links {
	if l == nil {
		return nil
	}
	result := make(Links, len(l))
	for rel, targets := range l {
		result[rel] = append([]Link(nil), targets...)
	}
	return result
}

// Item is a single shaped resource representation: a dictionary of
// data fields plus the resource's links.  Its JSON form is the field
// dictionary with a "_links" key merged in; fields are emitted in
// sorted name order.
type Item struct {
	// Fields holds the data fields of the item.
	Fields map[string]interface{}

	// Links holds the item's hypermedia links.  Shaping an item
	// never adds, removes, or rewrites links.
	Links Links
}

// MarshalJSON returns the merged JSON form of an item.
func (it Item) MarshalJSON() ([]byte, error) {
	names := make([]string, 0, len(it.Fields))
	for name := range it.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	buf.WriteByte('{')
	first := true
	for _, name := range names {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		key, err := jsonValue(name)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		value, err := jsonValue(it.Fields[name])
		if err != nil {
			return nil, err
		}
		buf.Write(value)
	}
	if len(it.Links) > 0 {
		if !first {
			buf.WriteByte(',')
		}
		buf.WriteString(`"_links":`)
		links, err := jsonValue(map[string][]Link(it.Links))
		if err != nil {
			return nil, err
		}
		buf.Write(links)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON splits the merged JSON form of an item back into its
// data fields and its links.
func (it *Item) UnmarshalJSON(in []byte) error {
	var raw map[string]interface{}
	jsonHandle := &codec.JsonHandle{}
	jsonHandle.MapType = reflect.TypeOf(map[string]interface{}(nil))
	decoder := codec.NewDecoderBytes(in, jsonHandle)
	if err := decoder.Decode(&raw); err != nil {
		return err
	}
	it.Links = nil
	if rawLinks, present := raw["_links"]; present {
		delete(raw, "_links")
		var links Links
		config := mapstructure.DecoderConfig{Result: &links}
		linkDecoder, err := mapstructure.NewDecoder(&config)
		if err == nil {
			err = linkDecoder.Decode(rawLinks)
		}
		if err != nil {
			return err
		}
		it.Links = links
	}
	it.Fields = raw
	return nil
}
