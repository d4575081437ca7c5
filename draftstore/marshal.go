// Copyright 2016 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package draftstore

import (
	"fmt"
)

// MarshalText returns a string representing a document status.
func (status DocumentStatus) MarshalText() ([]byte, error) {
	switch status {
	case DraftDocument:
		return []byte("draft"), nil
	case PublishedDocument:
		return []byte("published"), nil
	case ArchivedDocument:
		return []byte("archived"), nil
	default:
		return nil, fmt.Errorf("invalid status (marshal, %+v)", status)
	}
}

// UnmarshalText populates a document status from a string.
func (status *DocumentStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "draft":
		*status = DraftDocument
	case "published":
		*status = PublishedDocument
	case "archived":
		*status = ArchivedDocument
	default:
		return fmt.Errorf("invalid status (unmarshal, %+v)", string(text))
	}
	return nil
}
