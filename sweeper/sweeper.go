// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package sweeper provides a retention sweeper for autosave
// snapshots.  Snapshots that have not been rewritten for longer than
// a configured time-to-live are destroyed; their documents are left
// alone.  A Sweeper is typically run in a goroutine alongside the
// REST server that shares its store.
package sweeper

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/sirupsen/logrus"

	"github.com/diffeo/go-draftstore/draftstore"
)

// Sweeper destroys stale autosave snapshots.
type Sweeper struct {
	// Store is the Draftstore backend to sweep.  This field is
	// required.
	Store draftstore.Store

	// Collections names the collections to sweep.  If empty, the
	// sweeper discovers collections from the store summary, which
	// covers every collection that currently holds documents.
	Collections []string

	// TTL is how long a snapshot may go without being rewritten
	// before it is destroyed.  If unset, defaults to 7 days.
	TTL time.Duration

	// Interval states how often a sweep pass runs.  If unset,
	// defaults to 1 hour.
	Interval time.Duration

	// Clock defines a time source for the sweeper.  If the store
	// was created with an alternate time source, this should
	// match it.  Only test code should need to set this.  If
	// unset, uses real wall-clock time.
	Clock clock.Clock

	// Log receives per-pass reports.  If unset, uses the logrus
	// standard logger.
	Log logrus.FieldLogger
}

// setDefaults sets default values for any Sweeper fields that are
// uninitialized.
func (s *Sweeper) setDefaults() {
	if s.TTL == time.Duration(0) {
		s.TTL = 7 * 24 * time.Hour
	}
	if s.Interval == time.Duration(0) {
		s.Interval = time.Hour
	}
	if s.Clock == nil {
		s.Clock = clock.New()
	}
	if s.Log == nil {
		s.Log = logrus.StandardLogger()
	}
}

// collections resolves the list of collection names to sweep.
func (s *Sweeper) collections() ([]string, error) {
	if len(s.Collections) > 0 {
		return s.Collections, nil
	}
	summary, err := s.Store.Summarize()
	if err != nil {
		return nil, err
	}
	var names []string
	seen := make(map[string]struct{})
	for _, record := range summary {
		if _, present := seen[record.Collection]; present {
			continue
		}
		seen[record.Collection] = struct{}{}
		names = append(names, record.Collection)
	}
	return names, nil
}

// SweepOnce runs a single sweep pass over every collection, and
// returns the number of snapshots destroyed.  Errors looking at any
// single document or snapshot stop the pass; a snapshot that is
// destroyed concurrently with the pass is not an error.
func (s *Sweeper) SweepOnce() (int, error) {
	s.setDefaults()
	cutoff := s.Clock.Now().Add(-s.TTL)
	destroyed := 0

	names, err := s.collections()
	if err != nil {
		return destroyed, err
	}
	for _, name := range names {
		collection, err := s.Store.Collection(name)
		if err != nil {
			return destroyed, err
		}
		docs, err := collection.Documents()
		if err != nil {
			return destroyed, err
		}
		for _, doc := range docs {
			saves, err := doc.Autosaves()
			if err != nil {
				return destroyed, err
			}
			for _, save := range saves {
				modified, err := save.Modified()
				if err != nil {
					return destroyed, err
				}
				if modified.After(cutoff) {
					continue
				}
				err = doc.DestroyAutosave(save.ID())
				if _, missing := err.(draftstore.ErrNoSuchAutosave); missing {
					// Lost a race with another
					// deleter; the snapshot is
					// gone either way.
					err = nil
				}
				if err != nil {
					return destroyed, err
				}
				destroyed++
			}
		}
	}
	return destroyed, nil
}

// Run sweeps periodically until the provided context is cancelled.
// Errors during a pass are logged, and the next pass runs as
// scheduled.
func (s *Sweeper) Run(ctx context.Context) {
	s.setDefaults()
	ticker := s.Clock.Ticker(s.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			destroyed, err := s.SweepOnce()
			if err != nil {
				s.Log.WithFields(logrus.Fields{
					"err":       err,
					"destroyed": destroyed,
				}).Warn("Autosave sweep failed")
			} else {
				s.Log.WithFields(logrus.Fields{
					"destroyed": destroyed,
				}).Debug("Swept stale autosaves")
			}
		}
	}
}
