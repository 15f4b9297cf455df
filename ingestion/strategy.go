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
	"errors"
	"fmt"

	"github.com/poiesic/chunkstore/core"
	"github.com/poiesic/chunkstore/storage"
)

// Strategy applies records to a collection under one Mode's conflict policy.
// The driver calls Plan, then Prepare, then Apply once per batch.
type Strategy interface {
	// Mode returns the mode this strategy implements.
	Mode() Mode

	// Plan checks the records of one run in isolation and returns the
	// records to write, in order.
	Plan(collection string, chunks []*core.Chunk) ([]*core.Chunk, error)

	// Prepare readies the destination collection for the planned records.
	Prepare(ctx context.Context, repo storage.CollectionRepository, template *core.Collection, chunks []*core.Chunk) (Prepared, error)

	// Apply writes one batch of planned records.
	Apply(ctx context.Context, repo storage.CollectionRepository, collection string, batch []*core.Chunk) (Applied, error)
}

// Prepared describes what Prepare did to the collection.
type Prepared struct {
	Deleted bool
	Created bool
}

// Applied counts the records one Apply call wrote.
type Applied struct {
	Inserted int
	Replaced int
}

// StrategyFor returns the strategy for mode.
func StrategyFor(mode Mode) (Strategy, error) {
	switch mode {
	case ModeRebuild:
		return rebuildStrategy{}, nil
	case ModeAppend:
		return appendStrategy{}, nil
	case ModeUpsert:
		return upsertStrategy{}, nil
	}
	return nil, &InputError{Err: fmt.Errorf("%w %q", ErrInvalidMode, mode)}
}

// rebuildStrategy replaces the whole collection with the input.
type rebuildStrategy struct{}

func (rebuildStrategy) Mode() Mode { return ModeRebuild }

func (rebuildStrategy) Plan(collection string, chunks []*core.Chunk) ([]*core.Chunk, error) {
	return rejectRepeats(collection, chunks)
}

func (rebuildStrategy) Prepare(ctx context.Context, repo storage.CollectionRepository, template *core.Collection, _ []*core.Chunk) (Prepared, error) {
	var prepared Prepared
	err := repo.DeleteCollection(ctx, template.Name)
	switch {
	case err == nil:
		prepared.Deleted = true
	case !errors.Is(err, storage.ErrNotFound):
		return prepared, storeError("delete collection", err)
	}

	if _, err := repo.CreateCollection(ctx, template); err != nil {
		return prepared, storeError("create collection", err)
	}
	prepared.Created = true
	return prepared, nil
}

func (rebuildStrategy) Apply(ctx context.Context, repo storage.CollectionRepository, collection string, batch []*core.Chunk) (Applied, error) {
	return addBatch(ctx, repo, collection, batch)
}

// appendStrategy adds records to the collection and never overwrites.
type appendStrategy struct{}

func (appendStrategy) Mode() Mode { return ModeAppend }

func (appendStrategy) Plan(collection string, chunks []*core.Chunk) ([]*core.Chunk, error) {
	return rejectRepeats(collection, chunks)
}

// Prepare fails with a ConflictError, before anything is written, when any
// planned ID is already stored.
func (appendStrategy) Prepare(ctx context.Context, repo storage.CollectionRepository, template *core.Collection, chunks []*core.Chunk) (Prepared, error) {
	_, created, err := repo.GetOrCreateCollection(ctx, template)
	if err != nil {
		return Prepared{}, storeError("get or create collection", err)
	}
	prepared := Prepared{Created: created}
	if created || len(chunks) == 0 {
		return prepared, nil
	}

	existing, err := repo.ExistingIDs(ctx, template.Name, chunkIDs(chunks)...)
	if err != nil {
		return prepared, storeError("check existing ids", err)
	}
	if len(existing) > 0 {
		return prepared, &ConflictError{Collection: template.Name, IDs: existing}
	}
	return prepared, nil
}

func (appendStrategy) Apply(ctx context.Context, repo storage.CollectionRepository, collection string, batch []*core.Chunk) (Applied, error) {
	return addBatch(ctx, repo, collection, batch)
}

// upsertStrategy inserts new records and replaces existing ones.
type upsertStrategy struct{}

func (upsertStrategy) Mode() Mode { return ModeUpsert }

// Plan collapses repeated IDs so the last occurrence wins. The surviving
// record keeps the position of the first occurrence. Rebuild and append
// reject such files, and earlier loaders rejected them in every mode.
func (upsertStrategy) Plan(_ string, chunks []*core.Chunk) ([]*core.Chunk, error) {
	positions := make(map[string]int, len(chunks))
	planned := make([]*core.Chunk, 0, len(chunks))
	for _, chunk := range chunks {
		if i, ok := positions[chunk.ID]; ok {
			planned[i] = chunk
			continue
		}
		positions[chunk.ID] = len(planned)
		planned = append(planned, chunk)
	}
	return planned, nil
}

func (upsertStrategy) Prepare(ctx context.Context, repo storage.CollectionRepository, template *core.Collection, _ []*core.Chunk) (Prepared, error) {
	_, created, err := repo.GetOrCreateCollection(ctx, template)
	if err != nil {
		return Prepared{}, storeError("get or create collection", err)
	}
	return Prepared{Created: created}, nil
}

func (upsertStrategy) Apply(ctx context.Context, repo storage.CollectionRepository, collection string, batch []*core.Chunk) (Applied, error) {
	inserted, err := repo.UpsertChunks(ctx, collection, batch...)
	if err != nil {
		return Applied{}, storeError("upsert chunks", err)
	}
	return Applied{Inserted: inserted, Replaced: len(batch) - inserted}, nil
}

// addBatch writes a batch with must-not-exist semantics, reporting key
// collisions as a ConflictError.
func addBatch(ctx context.Context, repo storage.CollectionRepository, collection string, batch []*core.Chunk) (Applied, error) {
	err := repo.AddChunks(ctx, collection, batch...)
	if err != nil {
		var dup *storage.DuplicateError
		if errors.As(err, &dup) {
			return Applied{}, &ConflictError{Collection: collection, IDs: dup.IDs}
		}
		return Applied{}, storeError("add chunks", err)
	}
	return Applied{Inserted: len(batch)}, nil
}

// rejectRepeats returns chunks unchanged, or a ConflictError listing every
// ID that occurs more than once.
func rejectRepeats(collection string, chunks []*core.Chunk) ([]*core.Chunk, error) {
	seen := make(map[string]int, len(chunks))
	var repeated []string
	for _, chunk := range chunks {
		seen[chunk.ID]++
		if seen[chunk.ID] == 2 {
			repeated = append(repeated, chunk.ID)
		}
	}
	if len(repeated) > 0 {
		return nil, &ConflictError{Collection: collection, IDs: repeated}
	}
	return chunks, nil
}

func chunkIDs(chunks []*core.Chunk) []string {
	ids := make([]string, len(chunks))
	for i, chunk := range chunks {
		ids[i] = chunk.ID
	}
	return ids
}
