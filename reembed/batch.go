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
	"log/slog"
	"time"

	"github.com/poiesic/chunkstore/ai"
	"github.com/poiesic/chunkstore/core"
	"github.com/poiesic/chunkstore/ingestion"
	"github.com/poiesic/chunkstore/storage"
)

// BatchProcessor handles embedding generation and storage updates for batches of chunks.
type BatchProcessor struct {
	repo           storage.CollectionRepository
	embedder       ai.Embedder
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger
}

// NewBatchProcessor creates a new batch processor.
// maxRetries: maximum number of attempts for embedding API calls
// retryBaseDelay: base delay for exponential backoff
func NewBatchProcessor(repo storage.CollectionRepository, embedder ai.Embedder, maxRetries int, retryBaseDelay time.Duration, logger *slog.Logger) *BatchProcessor {
	if logger == nil {
		logger = slog.Default()
	}
	return &BatchProcessor{
		repo:           repo,
		embedder:       embedder,
		maxRetries:     maxRetries,
		retryBaseDelay: retryBaseDelay,
		logger:         logger,
	}
}

// Process embeds a batch of chunks and writes the new vectors back.
// Vectors are normalized to unit length before they are stored.
func (bp *BatchProcessor) Process(ctx context.Context, collection string, chunks []*core.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}

	texts := make([]string, len(chunks))
	for i, chunk := range chunks {
		texts[i] = chunk.Text
	}

	vectors, err := ai.EmbedBatch(ctx, bp.logger, bp.embedder, texts, bp.maxRetries, bp.retryBaseDelay)
	if err != nil {
		return fmt.Errorf("%w: %w", ingestion.ErrEmbedding, err)
	}
	for i, chunk := range chunks {
		chunk.Vector = vectors[i]
	}

	if _, err := bp.repo.UpsertChunks(ctx, collection, chunks...); err != nil {
		return &ingestion.StoreError{Op: "update vectors", Err: err}
	}
	return nil
}
