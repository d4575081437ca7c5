// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package restdata

// SanitizeValue checks a raw value against a field declaration,
// returning the value to present, or nil if the value does not fit
// the declaration.  Object fields with declared properties are
// filtered recursively: undeclared keys are dropped, and declared
// keys whose values fail their own checks come back null.
//
// Values can arrive here from a JSON body or from a CBOR payload
// decode, so the numeric and map representations of both codecs are
// accepted.
func SanitizeValue(f Field, value interface{}) interface{} {
	if value == nil {
		return nil
	}
	switch f.Type {
	case "string":
		s, ok := value.(string)
		if !ok {
			return nil
		}
		if len(f.Enum) > 0 {
			for _, e := range f.Enum {
				if s == e {
					return s
				}
			}
			return nil
		}
		return s

	case "boolean":
		b, ok := value.(bool)
		if !ok {
			return nil
		}
		return b

	case "integer":
		switch n := value.(type) {
		case int:
			return int64(n)
		case int64:
			return n
		case uint64:
			return int64(n)
		case float64:
			i := int64(n)
			if float64(i) == n {
				return i
			}
			return nil
		default:
			return nil
		}

	case "number":
		switch n := value.(type) {
		case int:
			return float64(n)
		case int64:
			return float64(n)
		case uint64:
			return float64(n)
		case float64:
			return n
		default:
			return nil
		}

	case "array":
		if l, ok := value.([]interface{}); ok {
			return l
		}
		return nil

	case "object":
		m, ok := value.(map[string]interface{})
		if !ok {
			// CBOR decoding produces interface-keyed maps
			mi, isMap := value.(map[interface{}]interface{})
			if !isMap {
				return nil
			}
			m = make(map[string]interface{}, len(mi))
			for k, v := range mi {
				ks, isString := k.(string)
				if !isString {
					return nil
				}
				m[ks] = v
			}
		}
		if len(f.Properties) == 0 {
			return m
		}
		out := make(map[string]interface{})
		for _, p := range f.Properties {
			if v, present := m[p.Name]; present {
				out[p.Name] = SanitizeValue(p, v)
			}
		}
		return out
	}

	// A field with no (or an unrecognized) declared type accepts
	// anything.
	return value
}
