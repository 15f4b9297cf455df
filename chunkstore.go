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

package chunkstore

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/chunkstore/ai"
	"github.com/poiesic/chunkstore/ai/openai"
	"github.com/poiesic/chunkstore/core"
	"github.com/poiesic/chunkstore/ingestion"
	"github.com/poiesic/chunkstore/reembed"
	"github.com/poiesic/chunkstore/storage"
	"github.com/poiesic/chunkstore/storage/badger"
)

// Store ties a persistence location to the optional embedding service.
// It holds no open database handle: each ingestion run and each read opens
// the location and closes it again.
type Store struct {
	location storage.Location
	aiConfig *ai.Config
	embedder ai.Embedder
	logger   *slog.Logger
}

// StoreOption configures a Store.
type StoreOption func(*storeOptions)

type storeOptions struct {
	aiConfig *ai.Config
	embedder ai.Embedder
	logger   *slog.Logger
}

// WithAIConfig enables embedding through an OpenAI-compatible service.
// Embedding stays disabled when the config names no model.
func WithAIConfig(config *ai.Config) StoreOption {
	return func(o *storeOptions) {
		o.aiConfig = config
	}
}

// WithEmbedder uses embedder directly instead of building one from a config.
func WithEmbedder(embedder ai.Embedder) StoreOption {
	return func(o *storeOptions) {
		o.embedder = embedder
	}
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(o *storeOptions) {
		o.logger = logger
	}
}

// Open returns a Store for the given location.
func Open(location storage.Location, opts ...StoreOption) (*Store, error) {
	if location == nil {
		return nil, ingestion.ErrRepositoryRequired
	}
	options := &storeOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	embedder := options.embedder
	if embedder == nil && options.aiConfig.EmbeddingModel != "" {
		var err error
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			return nil, fmt.Errorf("create embedder: %w", err)
		}
	}

	return &Store{
		location: location,
		aiConfig: options.aiConfig,
		embedder: embedder,
		logger:   options.logger,
	}, nil
}

// OpenDir returns a Store backed by the BadgerDB directory dir.
func OpenDir(dir string, opts ...StoreOption) (*Store, error) {
	return Open(badger.NewLocation(dir), opts...)
}

// Location returns the persistence location.
func (s *Store) Location() storage.Location {
	return s.location
}

// EmbeddingEnabled reports whether ingested records are embedded.
func (s *Store) EmbeddingEnabled() bool {
	return s.embedder != nil
}

// NewIngester creates an Ingester for this store. The store's logger and
// embedder are applied first, so opts may override them.
func (s *Store) NewIngester(opts ...ingestion.Option) (*ingestion.Ingester, error) {
	base := []ingestion.Option{ingestion.WithLogger(s.logger)}
	if s.embedder != nil {
		base = append(base, ingestion.WithEmbedder(s.embedder, s.aiConfig.EmbeddingModel))
	}
	return ingestion.NewIngester(s.location, append(base, opts...)...)
}

// CollectionStats describes one stored collection.
type CollectionStats struct {
	Collection *core.Collection
	Chunks     int
}

// Stats lists every collection with its record count, ordered by name.
func (s *Store) Stats(ctx context.Context) (stats []CollectionStats, err error) {
	err = s.withRepository(func(repo storage.CollectionRepository) error {
		collections, err := repo.ListCollections(ctx)
		if err != nil {
			return err
		}
		for _, collection := range collections {
			count, err := repo.CountChunks(ctx, collection.Name)
			if err != nil {
				return err
			}
			stats = append(stats, CollectionStats{Collection: collection, Chunks: count})
		}
		return nil
	})
	return stats, err
}

// exportRecord is the chunks file layout written by Export.
type exportRecord struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Export writes every record of collection to w as JSON lines, ordered by ID.
// The output can be loaded again with an Ingester. Vectors are not exported.
// Returns the number of records written.
func (s *Store) Export(ctx context.Context, collection string, w io.Writer) (int, error) {
	written := 0
	err := s.withRepository(func(repo storage.CollectionRepository) error {
		encoder := json.NewEncoder(w)
		encoder.SetEscapeHTML(false)
		return repo.ScanChunks(ctx, collection, func(chunk *core.Chunk) error {
			record := exportRecord{ID: chunk.ID, Text: chunk.Text}
			if len(chunk.Metadata) > 0 {
				record.Metadata = make(map[string]any, len(chunk.Metadata))
				for key, value := range chunk.Metadata {
					record.Metadata[key] = value.Interface()
				}
			}
			if err := encoder.Encode(record); err != nil {
				return fmt.Errorf("write record %q: %w", chunk.ID, err)
			}
			written++
			return nil
		})
	})
	return written, err
}

// Reembed replaces the vector of every record in collection using the store's
// embedder, writing progress to progress when it is non-nil. A nil config
// uses reembed.DefaultConfig. Returns the number of records updated.
func (s *Store) Reembed(ctx context.Context, collection string, config *reembed.Config, progress io.Writer) (processed int, err error) {
	if s.embedder == nil {
		return 0, reembed.ErrEmbedderRequired
	}
	err = s.withRepository(func(repo storage.CollectionRepository) error {
		reembedder, err := reembed.NewReembedder(repo, s.embedder, s.aiConfig.EmbeddingModel, config, progress)
		if err != nil {
			return err
		}
		processed, err = reembedder.Run(ctx, collection)
		return err
	})
	return processed, err
}

func (s *Store) withRepository(fn func(storage.CollectionRepository) error) error {
	repo, err := s.location.Open()
	if err != nil {
		return &ingestion.StoreError{Op: "open store", Err: err}
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			s.logger.Error("error closing store", "err", closeErr)
		}
	}()
	return fn(repo)
}
