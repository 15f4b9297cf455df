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

	"github.com/poiesic/chunkstore/core"
	"github.com/poiesic/chunkstore/storage"
)

const (
	// DefaultBatchSize is the default number of chunks to fetch in each batch
	DefaultBatchSize = 32
)

// ChunkIterator iterates over the chunks of a collection in batches.
type ChunkIterator struct {
	repo      storage.CollectionRepository
	batchSize int
}

// NewChunkIterator creates a new chunk iterator.
// batchSize: number of chunks to fetch in each batch (must be > 0)
func NewChunkIterator(repo storage.CollectionRepository, batchSize int) *ChunkIterator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	return &ChunkIterator{
		repo:      repo,
		batchSize: batchSize,
	}
}

// IDs returns the IDs of every chunk in the collection, in ID order.
func (it *ChunkIterator) IDs(ctx context.Context, collection string) ([]string, error) {
	var ids []string
	err := it.repo.ScanChunks(ctx, collection, func(chunk *core.Chunk) error {
		ids = append(ids, chunk.ID)
		return nil
	})
	return ids, err
}

// ForEach calls fn with the chunks of ids, batchSize at a time.
// Iteration stops on first error from fn or when all chunks are processed.
// Context cancellation is checked between batches.
//
// Chunks are loaded one batch at a time, after the previous batch was
// handled, so fn may write the chunks it is given.
func (it *ChunkIterator) ForEach(ctx context.Context, collection string, ids []string, fn func([]*core.Chunk) error) error {
	for start := 0; start < len(ids); start += it.batchSize {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := it.repo.GetChunks(ctx, collection, ids[start:min(start+it.batchSize, len(ids))]...)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			continue
		}
		if err := fn(batch); err != nil {
			return err
		}
	}
	return nil
}
