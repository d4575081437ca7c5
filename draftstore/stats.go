// Statistics for Draftstore objects.
//
// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package draftstore

import (
	"sort"
)

// SummaryRecord is a single piece of summary data, recording how many
// documents were in some status in some collection, and how many
// autosave snapshots those documents held between them.
type SummaryRecord struct {
	Collection string
	Status     DocumentStatus
	Count      int
	Autosaves  int
}

// Summary is a summary of document and autosave counts for some part
// of the Draftstore system.  The records are in no particular order.
// The summary should not contain records with zero document count.
type Summary []SummaryRecord

// Sort sorts the records of a summary in place.
func (s Summary) Sort() {
	less := func(i, j int) bool {
		if s[i].Collection < s[j].Collection {
			return true
		}
		if s[i].Collection > s[j].Collection {
			return false
		}
		return s[i].Status < s[j].Status
	}
	sort.Slice(s, less)
}

// Summarizable describes Draftstore objects that can be summarized.
// The summary is not required to have exact counts; counts may be
// rounded, delayed, or otherwise approximate.
type Summarizable interface {
	Summarize() (Summary, error)
}
