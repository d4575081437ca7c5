// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package draftstored provides the Draftstore daemon.  It serves the
// REST interface from the "restserver" package over a storage backend
// selected on the command line, publishes Prometheus metrics and a
// health endpoint, and optionally sweeps stale autosave snapshots.
package main

import (
	"context"
	"flag"

	"github.com/sirupsen/logrus"

	"github.com/diffeo/go-draftstore/backend"
)

func main() {
	httpBind := flag.String("http", ":5980",
		"[ip]:port for HTTP REST interface")
	backend := backend.Backend{Implementation: "memory", Address: ""}
	flag.Var(&backend, "backend", "impl[:address] of the storage backend")
	config := flag.String("config", "", "configuration YAML file")
	logRequests := flag.Bool("log-requests", false, "log all requests")
	flag.Parse()

	cfg := defaultConfig()
	if *config != "" {
		var err error
		cfg, err = loadConfigYaml(*config)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"err": err,
			}).Fatal("Could not load YAML configuration")
			return
		}
	}

	store, err := backend.Store()
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Could not create Draftstore backend")
		return
	}

	sweep, err := cfg.Retention.Sweeper(store)
	if err != nil {
		logrus.WithFields(logrus.Fields{
			"err": err,
		}).Fatal("Could not configure autosave retention")
		return
	}
	if sweep != nil {
		logrus.WithFields(logrus.Fields{
			"ttl":      sweep.TTL,
			"interval": sweep.Interval,
		}).Info("Sweeping stale autosaves")
		go sweep.Run(context.Background())
	}

	go observe(store)
	serveHTTP(store, cfg.CollectionConfigs(), *httpBind, *logRequests)
}
