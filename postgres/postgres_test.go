package postgres_test

import (
	"testing"

	"github.com/diffeo/go-draftstore/draftstore/storetest"
	"github.com/diffeo/go-draftstore/postgres"
	"github.com/stretchr/testify/suite"
)

// Suite is the per-backend generic test suite.
type Suite struct {
	storetest.Suite
}

// SetupSuite does global setup for the test suite.
//
// This creates a PostgreSQL Draftstore backend using an empty string
// as the connection string.  This means that, when you run "go test",
// you must set environment variables as described in
// http://www.postgresql.org/docs/current/static/libpq-envars.html
// to point at a scratch database.  If the connection fails the suite
// is skipped.
func (s *Suite) SetupSuite() {
	s.Suite.SetupSuite()
	store, err := postgres.NewWithClock("", s.Clock)
	if err != nil {
		s.T().Skipf("cannot connect to PostgreSQL: %v", err)
	}
	s.Store = store
}

// TestStore runs the Store generic tests.
func TestStore(t *testing.T) {
	suite.Run(t, &Suite{})
}
