// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"github.com/poiesic/grag"
	"github.com/poiesic/grag/ai"
	"github.com/poiesic/grag/config"
	"github.com/urfave/cli/v2"
)

// Metadata keys shared between the Before hook and command actions.
const (
	metaConfig   = "config"
	metaEmbedder = "embedder"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:     "grag",
		Usage:    "Graph-aware retrieval over a linked document corpus",
		Metadata: map[string]any{},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
				EnvVars: []string{"GRAG_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory (overrides database.path)",
			},
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Set logging format (text, json, pretty)",
			},
		},
		Before: setup,
		Commands: []*cli.Command{
			importCommand(),
			embedCommand(),
			searchCommand(),
			batchCommand(),
			similarCommand(),
			statsCommand(),
			answersCommand(),
		},
	}
}

// setup loads the configuration, applies global flag overrides and installs
// the default logger.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	if db := c.String("db"); db != "" {
		cfg.Database.Path = db
	}
	if level := c.String("log-level"); level != "" {
		cfg.Log.Level = level
	}
	if format := c.String("log-format"); format != "" {
		cfg.Log.Format = format
	}

	if err := setupLogger(c.App.ErrWriter, cfg.Log); err != nil {
		return err
	}

	c.App.Metadata[metaConfig] = cfg
	return nil
}

func appConfig(c *cli.Context) *config.Config {
	cfg, _ := c.App.Metadata[metaConfig].(*config.Config)
	return cfg
}

// openDatabase opens the configured store. An embedder placed in the app
// metadata replaces the OpenAI-compatible client.
func openDatabase(c *cli.Context) (*grag.Database, error) {
	cfg := appConfig(c)
	if cfg == nil {
		return nil, fmt.Errorf("configuration not loaded")
	}

	opts := []grag.DatabaseOption{grag.WithAIConfig(cfg.AI())}
	if embedder, ok := c.App.Metadata[metaEmbedder].(ai.Embedder); ok {
		opts = append(opts, grag.WithEmbedder(embedder))
	}

	db, err := grag.NewDatabase(cfg.Database.Path, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func durationFlag(name, usage string, value time.Duration) *cli.DurationFlag {
	return &cli.DurationFlag{Name: name, Usage: usage, Value: value}
}
