// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"net/http"
	"time"

	"github.com/google/go-cloud/health"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	"github.com/urfave/negroni"

	"github.com/diffeo/go-draftstore/draftstore"
	"github.com/diffeo/go-draftstore/restserver"
)

// storeChecker reports the daemon healthy as long as the storage
// backend can be summarized.
type storeChecker struct {
	store draftstore.Store
}

func (c storeChecker) CheckHealth() error {
	_, err := c.store.Summarize()
	return err
}

// serveHTTP runs the HTTP server on the specified local address.
// This serves connections forever.  Panics on any error in the
// initial setup or in accepting connections.
func serveHTTP(store draftstore.Store, collections []restserver.CollectionConfig, laddr string, logRequests bool) {
	r := mux.NewRouter()
	restserver.PopulateRouter(r, store, collections...)
	r.Handle("/metrics", promhttp.Handler())
	healthz := &health.Handler{}
	healthz.Add(storeChecker{store: store})
	r.Handle("/healthz", healthz)

	n := negroni.New()
	n.Use(negroni.NewRecovery())
	if logRequests {
		n.Use(negroni.HandlerFunc(logRequest))
	}
	n.Use(negroni.HandlerFunc(countRequest))
	n.UseHandler(r)

	err := http.ListenAndServe(laddr, n)
	if err != nil {
		panic(err)
	}
}

// logRequest is a negroni middleware that reports every request.
func logRequest(w http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
	start := time.Now()
	next(w, req)
	fields := logrus.Fields{
		"method":   req.Method,
		"path":     req.URL.Path,
		"duration": time.Since(start),
	}
	if res, ok := w.(negroni.ResponseWriter); ok {
		fields["status"] = res.Status()
	}
	logrus.WithFields(fields).Debug("Handled request")
}
