// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/urfave/negroni"

	"github.com/diffeo/go-draftstore/draftstore"
)

var documentCount = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "diffeo",
		Subsystem: "draftstore",
		Name:      "documents",
		Help:      "Documents per collection and status",
	},
	[]string{
		"collection",
		"status",
	},
)

var autosaveCount = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: "diffeo",
		Subsystem: "draftstore",
		Name:      "autosaves",
		Help:      "Autosave snapshots per collection and document status",
	},
	[]string{
		"collection",
		"status",
	},
)

var requestCount = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: "diffeo",
		Subsystem: "draftstore",
		Name:      "requests",
		Help:      "HTTP requests served",
	},
	[]string{
		"method",
		"status",
	},
)

func init() {
	prometheus.MustRegister(documentCount)
	prometheus.MustRegister(autosaveCount)
	prometheus.MustRegister(requestCount)
}

// countRequest is a negroni middleware that counts every request.
func countRequest(w http.ResponseWriter, req *http.Request, next http.HandlerFunc) {
	next(w, req)
	status := 0
	if res, ok := w.(negroni.ResponseWriter); ok {
		status = res.Status()
	}
	requestCount.With(prometheus.Labels{
		"method": req.Method,
		"status": strconv.Itoa(status),
	}).Inc()
}

// observe periodically copies the store summary into the Prometheus
// gauges.
func observe(store draftstore.Store) {
	for {
		summary, _ := store.Summarize()
		for _, record := range summary {
			statusText, _ := record.Status.MarshalText()
			labels := prometheus.Labels{
				"collection": record.Collection,
				"status":     string(statusText),
			}
			documentCount.With(labels).Set(float64(record.Count))
			autosaveCount.With(labels).Set(float64(record.Autosaves))
		}
		time.Sleep(15 * time.Second)
	}
}
