// Copyright 2017 Diffeo, Inc.
// This software is released under an MIT/X11 open source license.

// Package draftbench provides a load-generation tool for Draftstore.
// It talks to a running draftstored server through the REST client.
package main

import (
	"runtime"
	"sync"
	"time"

	"github.com/satori/go.uuid"
	"github.com/urfave/cli"

	"github.com/diffeo/go-draftstore/restclient"
)

type benchWork struct {
	Client      *restclient.Client
	Collection  *restclient.Collection
	Concurrency int
}

func (bench *benchWork) Run(runner func()) {
	wg := sync.WaitGroup{}
	wg.Add(bench.Concurrency)
	for i := 0; i < bench.Concurrency; i++ {
		go func() {
			defer wg.Done()
			runner()
		}()
	}
	wg.Wait()
}

var bench benchWork

var addDocuments = cli.Command{
	Name:  "add",
	Usage: "create many documents",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "count",
			Value: 100,
			Usage: "number of documents to create",
		},
	},
	Action: func(c *cli.Context) {
		count := c.Int("count")
		numbers := make(chan int)
		go func() {
			for i := 1; i <= count; i++ {
				numbers <- i
			}
			close(numbers)
		}()
		bench.Run(func() {
			for <-numbers != 0 {
				title := uuid.NewV4().String()
				bench.Collection.CreateDocument(map[string]interface{}{
					"title": title,
				})
			}
		})
	},
}

var saveAutosaves = cli.Command{
	Name:  "save",
	Usage: "spam autosave snapshots at every document",
	Flags: []cli.Flag{
		cli.IntFlag{
			Name:  "count",
			Value: 100,
			Usage: "number of snapshots to save per worker",
		},
		cli.IntFlag{
			Name:  "authors",
			Value: 1,
			Usage: "distinct authors per worker; 1 exercises the rewrite path",
		},
		cli.DurationFlag{
			Name:  "delay",
			Value: 0,
			Usage: "wait this long between saves",
		},
	},
	Action: func(c *cli.Context) {
		count := c.Int("count")
		authors := c.Int("authors")
		delay := c.Duration("delay")
		docs, err := bench.Collection.Documents(restclient.DisplayOptions{})
		if err != nil || len(docs) == 0 {
			return
		}
		bench.Run(func() {
			names := make([]string, authors)
			for i := range names {
				names[i] = uuid.NewV4().String()
			}
			for i := 0; i < count; i++ {
				doc, err := bench.Collection.Document(restclient.ItemID(docs[i%len(docs)]))
				if err != nil {
					continue
				}
				doc.SaveAutosave(map[string]interface{}{
					"author": names[i%len(names)],
					"title":  uuid.NewV4().String(),
					"content": map[string]interface{}{
						"sequence": i,
					},
				})
				time.Sleep(delay)
			}
		})
	},
}

var clear = cli.Command{
	Name:  "clear",
	Usage: "delete all of the documents",
	Action: func(c *cli.Context) {
		docs, err := bench.Collection.Documents(restclient.DisplayOptions{})
		if err != nil {
			return
		}
		numbers := make(chan int64)
		go func() {
			for _, item := range docs {
				numbers <- restclient.ItemID(item)
			}
			close(numbers)
		}()
		bench.Run(func() {
			for id := range numbers {
				doc, err := bench.Collection.Document(id)
				if err == nil {
					doc.Destroy()
				}
			}
		})
	},
}

func main() {
	app := cli.NewApp()
	app.Usage = "benchmark the Draftstore document system"
	app.Flags = []cli.Flag{
		cli.StringFlag{
			Name:  "url",
			Value: "http://localhost:5980/",
			Usage: "base URL of the draftstored server",
		},
		cli.StringFlag{
			Name:  "collection",
			Value: "documents",
			Usage: "collection name to benchmark against",
		},
		cli.IntFlag{
			Name:  "concurrency",
			Value: runtime.NumCPU(),
			Usage: "run this many jobs in parallel",
		},
	}
	app.Commands = []cli.Command{
		addDocuments,
		saveAutosaves,
		clear,
	}
	app.Before = func(c *cli.Context) (err error) {
		bench.Client, err = restclient.New(c.String("url"))
		if err != nil {
			return
		}

		bench.Collection, err = bench.Client.Collection(c.String("collection"))
		if err != nil {
			return
		}

		bench.Concurrency = c.Int("concurrency")

		return
	}
	app.RunAndExitOnError()
}
