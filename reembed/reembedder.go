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

package reembed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/chunkstore/ai"
	"github.com/poiesic/chunkstore/core"
	"github.com/poiesic/chunkstore/ingestion"
	"github.com/poiesic/chunkstore/storage"
)

// Config holds configuration for the reembedding operation.
type Config struct {
	// BatchSize is the number of chunks to embed in each request
	BatchSize int

	// ReportInterval is how often to report progress (number of chunks)
	ReportInterval int

	// MaxRetries is the maximum number of attempts per embedding request
	MaxRetries int

	// RetryDelay is the base delay for exponential backoff
	RetryDelay time.Duration
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		BatchSize:      DefaultBatchSize,
		ReportInterval: 1000,
		MaxRetries:     3,
		RetryDelay:     1 * time.Second,
	}
}

// Reembedder replaces the vectors of every chunk in a collection.
type Reembedder struct {
	repo      storage.CollectionRepository
	model     string
	config    *Config
	progress  io.Writer
	processor *BatchProcessor
	iterator  *ChunkIterator
	logger    *slog.Logger
}

// NewReembedder creates a new reembedder.
// model names the embedder's model and is recorded on the collection.
// progress: where to write progress output (typically os.Stderr), may be nil
func NewReembedder(repo storage.CollectionRepository, embedder ai.Embedder, model string, config *Config, progress io.Writer) (*Reembedder, error) {
	if repo == nil {
		return nil, ingestion.ErrRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if model == "" {
		return nil, ErrModelRequired
	}
	if config == nil {
		config = DefaultConfig()
	}
	if config.MaxRetries <= 0 {
		return nil, ai.ErrInvalidMaxAttempts
	}

	logger := slog.Default().With("component", "reembed")
	return &Reembedder{
		repo:      repo,
		model:     model,
		config:    config,
		progress:  progress,
		processor: NewBatchProcessor(repo, embedder, config.MaxRetries, config.RetryDelay, logger),
		iterator:  NewChunkIterator(repo, config.BatchSize),
		logger:    logger,
	}, nil
}

// Run reembeds every chunk of collection and records the model in the
// collection's embed_model metadata. It returns the number of chunks updated.
// Text, metadata and IDs are not changed.
func (r *Reembedder) Run(ctx context.Context, collection string) (int, error) {
	started := time.Now()

	ids, err := r.iterator.IDs(ctx, collection)
	if err != nil {
		return 0, &ingestion.StoreError{Op: "list chunks", Err: err}
	}

	r.logger.Info("reembedding collection",
		"collection", collection,
		"chunks", len(ids),
		"model", r.model,
		"batch_size", r.config.BatchSize)

	tracker := ingestion.NewProgress(r.progress, len(ids), r.config.ReportInterval)
	processed := 0
	err = r.iterator.ForEach(ctx, collection, ids, func(chunks []*core.Chunk) error {
		if err := r.processor.Process(ctx, collection, chunks); err != nil {
			return fmt.Errorf("batch at %d: %w", processed, err)
		}
		processed += len(chunks)
		tracker.Add(len(chunks))
		return nil
	})
	if err != nil {
		return processed, err
	}
	tracker.Finish()

	_, err = r.repo.UpdateCollectionMetadata(ctx, collection, map[string]string{
		"embed_model":   r.model,
		"reembedded_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return processed, &ingestion.StoreError{Op: "update collection metadata", Err: err}
	}

	r.logger.Info("reembedding complete",
		"collection", collection,
		"chunks", processed,
		"elapsed", time.Since(started).Round(time.Millisecond))
	return processed, nil
}
