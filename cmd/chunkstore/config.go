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
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"
)

// fileConfig is the YAML config file layout. Keys match the flag names;
// values only fill flags not given on the command line or environment.
type fileConfig struct {
	ChunksJSONL    string   `yaml:"chunks_jsonl"`
	Mode           string   `yaml:"mode"`
	Collection     string   `yaml:"collection"`
	PersistDir     string   `yaml:"persist_dir"`
	BatchSize      int      `yaml:"batch_size"`
	Manifest       *string  `yaml:"manifest"`
	ReportInterval int      `yaml:"report_interval"`
	RequireMeta    []string `yaml:"require_meta"`
	EmbeddingHost  string   `yaml:"embedding_host"`
	EmbeddingModel string   `yaml:"embedding_model"`
	EmbedRetries   int      `yaml:"embed_retries"`
	RetryDelay     string   `yaml:"retry_delay"`
	LogLevel       string   `yaml:"log_level"`
}

func loadFileConfig(path string) (*fileConfig, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open config file: %w", err)
	}
	defer f.Close()

	var cfg fileConfig
	decoder := yaml.NewDecoder(f)
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// flagValues returns the configured values keyed by flag name.
// Zero values are omitted so they cannot mask flag defaults.
func (cfg *fileConfig) flagValues() map[string][]string {
	values := map[string][]string{}
	setString := func(name, value string) {
		if value != "" {
			values[name] = []string{value}
		}
	}
	setInt := func(name string, value int) {
		if value != 0 {
			values[name] = []string{strconv.Itoa(value)}
		}
	}

	setString(flagChunksJSONL, cfg.ChunksJSONL)
	setString(flagMode, cfg.Mode)
	setString(flagCollection, cfg.Collection)
	setString(flagPersistDir, cfg.PersistDir)
	setInt(flagBatchSize, cfg.BatchSize)
	if cfg.Manifest != nil {
		values[flagManifest] = []string{*cfg.Manifest}
	}
	setInt(flagReportInterval, cfg.ReportInterval)
	if len(cfg.RequireMeta) > 0 {
		values[flagRequireMeta] = cfg.RequireMeta
	}
	setString(flagEmbeddingHost, cfg.EmbeddingHost)
	setString(flagEmbeddingModel, cfg.EmbeddingModel)
	setInt(flagEmbedRetries, cfg.EmbedRetries)
	setString(flagRetryDelay, cfg.RetryDelay)
	setString(flagLogLevel, cfg.LogLevel)
	return values
}

// applyFileConfig loads the --config file, if any, into unset flags.
func applyFileConfig(c *cli.Context) error {
	path := c.String(flagConfig)
	if path == "" {
		return nil
	}
	cfg, err := loadFileConfig(path)
	if err != nil {
		return err
	}

	for name, values := range cfg.flagValues() {
		if c.IsSet(name) {
			continue
		}
		for _, value := range values {
			if err := c.Set(name, value); err != nil {
				return fmt.Errorf("config file %s: %s: %w", path, name, err)
			}
		}
	}
	return nil
}

// loadDotEnv exports the variables of an optional .env file so they can
// feed flag EnvVars. Variables already set in the environment win.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}
