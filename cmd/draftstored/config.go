// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

package main

import (
	"io/ioutil"
	"time"

	"gopkg.in/yaml.v2"

	"github.com/diffeo/go-draftstore/draftstore"
	"github.com/diffeo/go-draftstore/restserver"
	"github.com/diffeo/go-draftstore/sweeper"
)

// config is the root of the daemon's YAML configuration file.  A
// minimal file looks like
//
//	collections:
//	  - name: articles
//	  - name: pages
//	    readonly: true
//	retention:
//	  ttl: 168h
//	  interval: 1h
type config struct {
	// Collections lists the document collections to publish.
	Collections []collectionConfig `yaml:"collections"`

	// Retention configures autosave retention sweeping.  If
	// absent, snapshots are kept forever.
	Retention retentionConfig `yaml:"retention"`
}

// collectionConfig describes one published collection.
type collectionConfig struct {
	Name         string `yaml:"name"`
	ReadOnly     bool   `yaml:"readonly"`
	PayloadField string `yaml:"payload_field"`
}

// retentionConfig configures the autosave sweeper.  Durations are
// strings in Go syntax, like "36h".
type retentionConfig struct {
	TTL      string `yaml:"ttl"`
	Interval string `yaml:"interval"`
}

// defaultConfig is the configuration used when no file is given: a
// single "documents" collection and no retention sweeping.
func defaultConfig() config {
	return config{
		Collections: []collectionConfig{{Name: "documents"}},
	}
}

// loadConfigYaml reads the daemon configuration from a file.
func loadConfigYaml(filename string) (config, error) {
	var result config
	bytes, err := ioutil.ReadFile(filename)
	if err == nil {
		err = yaml.Unmarshal(bytes, &result)
	}
	if err == nil && len(result.Collections) == 0 {
		result.Collections = defaultConfig().Collections
	}
	return result, err
}

// CollectionConfigs converts the configured collections to the
// restserver's form.
func (c config) CollectionConfigs() []restserver.CollectionConfig {
	result := make([]restserver.CollectionConfig, len(c.Collections))
	for i, collection := range c.Collections {
		result[i] = restserver.CollectionConfig{
			Name:         collection.Name,
			ReadOnly:     collection.ReadOnly,
			PayloadField: collection.PayloadField,
		}
	}
	return result
}

// Sweeper builds an autosave sweeper from the retention settings, or
// returns nil if retention is not configured.
func (r retentionConfig) Sweeper(store draftstore.Store) (*sweeper.Sweeper, error) {
	if r.TTL == "" {
		return nil, nil
	}
	ttl, err := time.ParseDuration(r.TTL)
	if err != nil {
		return nil, err
	}
	sweep := &sweeper.Sweeper{Store: store, TTL: ttl}
	if r.Interval != "" {
		sweep.Interval, err = time.ParseDuration(r.Interval)
		if err != nil {
			return nil, err
		}
	}
	return sweep, nil
}
