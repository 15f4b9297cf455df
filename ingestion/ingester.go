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

package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/poiesic/chunkstore/ai"
	"github.com/poiesic/chunkstore/core"
	"github.com/poiesic/chunkstore/storage"
)

const (
	// DefaultCollection is the collection written when none is configured.
	DefaultCollection = "v1_chunks"
	// DefaultBatchSize is the number of records written per store transaction.
	DefaultBatchSize = 32
	// DefaultManifestPath is where the run manifest is written by default.
	DefaultManifestPath = "run_manifest.json"
	// DefaultRetryDelay is the first backoff delay between embedding attempts.
	DefaultRetryDelay = time.Second
)

// Ingester loads chunks files into a collection held at a persistence location.
// It runs synchronously; a single Ingester must not run concurrent Ingest calls
// against the same location.
type Ingester struct {
	location         storage.Location
	collection       string
	batchSize        int
	dryRun           bool
	manifestPath     string
	embedder         ai.Embedder
	embedModel       string
	embedAttempts    int
	retryDelay       time.Duration
	requiredMetadata []string
	progress         io.Writer
	reportInterval   int
	logger           *slog.Logger
}

// Option configures an Ingester.
type Option func(*Ingester) error

// WithCollection sets the destination collection name.
// Default is DefaultCollection.
func WithCollection(name string) Option {
	return func(i *Ingester) error {
		if err := core.ValidateCollectionName(name); err != nil {
			return &InputError{Err: err}
		}
		i.collection = name
		return nil
	}
}

// WithBatchSize sets how many records are embedded and written together.
// Default is DefaultBatchSize.
func WithBatchSize(size int) Option {
	return func(i *Ingester) error {
		if size < 1 {
			return fmt.Errorf("%w: batch size must be greater than 0, got %d", ErrInvalidOption, size)
		}
		i.batchSize = size
		return nil
	}
}

// WithDryRun makes Ingest read and check the input without opening the store.
func WithDryRun(dryRun bool) Option {
	return func(i *Ingester) error {
		i.dryRun = dryRun
		return nil
	}
}

// WithManifestPath sets where the run manifest is written after a
// successful run. An empty path disables the manifest. Default is none.
func WithManifestPath(path string) Option {
	return func(i *Ingester) error {
		i.manifestPath = path
		return nil
	}
}

// WithEmbedder embeds every record with embedder before it is written.
// model is recorded in collection metadata and the settings hash.
func WithEmbedder(embedder ai.Embedder, model string) Option {
	return func(i *Ingester) error {
		i.embedder = embedder
		i.embedModel = model
		return nil
	}
}

// WithEmbedRetries sets how many times a failing embedding request is
// attempted, waiting baseDelay and then doubling between attempts.
// Default is a single attempt. Store writes are never retried.
func WithEmbedRetries(attempts int, baseDelay time.Duration) Option {
	return func(i *Ingester) error {
		if attempts < 1 {
			return fmt.Errorf("%w: %w", ErrInvalidOption, ai.ErrInvalidMaxAttempts)
		}
		i.embedAttempts = attempts
		i.retryDelay = baseDelay
		return nil
	}
}

// WithRequiredMetadata rejects records missing any of keys, or holding an
// empty string for one of them.
func WithRequiredMetadata(keys ...string) Option {
	return func(i *Ingester) error {
		i.requiredMetadata = append(i.requiredMetadata[:0], keys...)
		return nil
	}
}

// WithProgress reports written records to w every interval records.
func WithProgress(w io.Writer, interval int) Option {
	return func(i *Ingester) error {
		i.progress = w
		i.reportInterval = interval
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(i *Ingester) error {
		if logger == nil {
			logger = slog.Default()
		}
		i.logger = logger
		return nil
	}
}

// NewIngester creates an Ingester writing to the store at location.
func NewIngester(location storage.Location, opts ...Option) (*Ingester, error) {
	if location == nil {
		return nil, ErrRepositoryRequired
	}

	i := &Ingester{
		location:      location,
		collection:    DefaultCollection,
		batchSize:     DefaultBatchSize,
		embedAttempts: 1,
		retryDelay:    DefaultRetryDelay,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(i); err != nil {
			return nil, err
		}
	}
	i.logger = i.logger.With("component", "ingestion")
	return i, nil
}

// Collection returns the destination collection name.
func (i *Ingester) Collection() string {
	return i.collection
}

// Ingest applies the records of the chunks file at chunksPath to the
// collection under mode's policy.
//
// The whole file is read and checked before the store is touched, so input
// errors and repeated IDs leave the store unchanged. resetStore destroys the
// persistence location first and is honored only for ModeRebuild.
//
// Failures are *InputError, *ConflictError or *StoreError, errors wrapping
// ErrEmbedding, or the context error when ctx ends between batches. On a
// failure after writing began, the returned summary reports what was written.
func (i *Ingester) Ingest(ctx context.Context, chunksPath string, mode Mode, resetStore bool) (*Summary, error) {
	started := time.Now()

	strategy, err := StrategyFor(mode)
	if err != nil {
		return nil, err
	}

	settings := i.settings(chunksPath, mode, resetStore)
	summary := &Summary{
		RunID:        uuid.NewString(),
		Mode:         mode,
		Collection:   i.collection,
		ChunksPath:   chunksPath,
		PersistDir:   i.location.String(),
		DryRun:       i.dryRun,
		SettingsHash: settings.Hash(),
	}
	logger := i.logger.With("run_id", summary.RunID, "mode", mode, "collection", i.collection)

	chunks, err := ReadChunks(chunksPath, i.requiredMetadata...)
	if err != nil {
		return nil, err
	}
	summary.Read = len(chunks)

	planned, err := strategy.Plan(i.collection, chunks)
	if err != nil {
		return nil, err
	}
	summary.Planned = len(planned)
	logger.Info("input loaded",
		"chunks_path", chunksPath,
		"records", summary.Read,
		"planned", summary.Planned,
		"settings_hash", summary.SettingsHash)

	if i.dryRun {
		logger.Info("dry run, store not opened")
		summary.Elapsed = time.Since(started)
		return summary, nil
	}

	if resetStore {
		if mode == ModeRebuild {
			if err := i.location.Reset(); err != nil {
				return nil, storeError("reset store", err)
			}
			summary.StoreReset = true
			logger.Info("persistence location reset", "persist_dir", summary.PersistDir)
		} else {
			logger.Warn("reset ignored outside rebuild mode")
		}
	}

	if err := i.apply(ctx, logger, strategy, settings, planned, summary); err != nil {
		summary.Elapsed = time.Since(started)
		return summary, err
	}
	summary.Elapsed = time.Since(started)

	if i.manifestPath != "" {
		if err := WriteManifest(i.manifestPath, newManifest(summary, settings, time.Now())); err != nil {
			return summary, err
		}
		logger.Info("wrote run manifest", "path", i.manifestPath)
	}

	logger.Info("ingestion complete",
		"inserted", summary.Inserted,
		"replaced", summary.Replaced,
		"collection_deleted", summary.CollectionDeleted,
		"elapsed", summary.Elapsed)
	return summary, nil
}

// apply opens the store, prepares the collection and writes planned in batches.
func (i *Ingester) apply(ctx context.Context, logger *slog.Logger, strategy Strategy, settings Settings, planned []*core.Chunk, summary *Summary) (err error) {
	repo, err := i.location.Open()
	if err != nil {
		return storeError("open store", err)
	}
	defer func() {
		if closeErr := repo.Close(); closeErr != nil {
			logger.Error("error closing store", "err", closeErr)
			if err == nil {
				err = storeError("close store", closeErr)
			}
		}
	}()

	prepared, err := strategy.Prepare(ctx, repo, i.collectionTemplate(settings, summary.SettingsHash), planned)
	if err != nil {
		return err
	}
	summary.CollectionDeleted = prepared.Deleted
	summary.CollectionCreated = prepared.Created
	if prepared.Deleted {
		logger.Info("deleted existing collection")
	}
	if prepared.Created {
		logger.Info("created collection")
	}

	progress := NewProgress(i.progress, len(planned), i.reportInterval)
	for start := 0; start < len(planned); start += i.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}
		batch := planned[start:min(start+i.batchSize, len(planned))]

		if i.embedder != nil {
			if err := i.embed(ctx, logger, batch); err != nil {
				return err
			}
		}

		applied, err := strategy.Apply(ctx, repo, i.collection, batch)
		if err != nil {
			return err
		}
		summary.Inserted += applied.Inserted
		summary.Replaced += applied.Replaced
		progress.Add(len(batch))
		logger.Debug("wrote batch", "offset", start, "size", len(batch))
	}
	progress.Finish()
	return nil
}

// embed sets a unit-length vector on every chunk of batch.
func (i *Ingester) embed(ctx context.Context, logger *slog.Logger, batch []*core.Chunk) error {
	texts := make([]string, len(batch))
	for n, chunk := range batch {
		texts[n] = chunk.Text
	}

	vectors, err := ai.EmbedBatch(ctx, logger, i.embedder, texts, i.embedAttempts, i.retryDelay)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrEmbedding, err)
	}
	for n, chunk := range batch {
		chunk.Vector = vectors[n]
	}
	return nil
}

// settings records paths in absolute form so the settings hash does not
// depend on how they were spelled.
func (i *Ingester) settings(chunksPath string, mode Mode, resetStore bool) Settings {
	return Settings{
		PipelineVersion: PipelineVersion,
		LoaderVersion:   LoaderVersion,
		ChunksPath:      absPath(chunksPath),
		PersistDir:      absPath(i.location.String()),
		Collection:      i.collection,
		EmbedModel:      i.embedModel,
		BatchSize:       i.batchSize,
		ResetStore:      resetStore,
		Mode:            mode,
	}
}

func absPath(path string) string {
	if abs, err := filepath.Abs(path); err == nil {
		return abs
	}
	return path
}

// collectionTemplate is the collection created when the destination is absent.
func (i *Ingester) collectionTemplate(settings Settings, settingsHash string) *core.Collection {
	metadata := map[string]string{
		"pipeline_version": settings.PipelineVersion,
		"stage3_version":   settings.LoaderVersion,
		"settings_hash":    settingsHash,
	}
	if settings.EmbedModel != "" {
		metadata["embed_model"] = settings.EmbedModel
	}
	return &core.Collection{Name: i.collection, Metadata: metadata}
}
