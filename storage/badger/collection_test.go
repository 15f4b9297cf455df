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

package badger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/poiesic/chunkstore/core"
	"github.com/poiesic/chunkstore/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newChunk(id, text string) *core.Chunk {
	return &core.Chunk{ID: id, Text: text, ContentHash: core.ContentHash(text)}
}

func setupRepository(t *testing.T) storage.CollectionRepository {
	t.Helper()
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo
}

// seedCollection creates a collection and adds one chunk per id (text = "text-"+id).
func seedCollection(t *testing.T, repo storage.CollectionRepository, name string, ids ...string) {
	t.Helper()
	ctx := context.Background()
	_, err := repo.CreateCollection(ctx, &core.Collection{Name: name})
	require.NoError(t, err)
	chunks := make([]*core.Chunk, len(ids))
	for i, id := range ids {
		chunks[i] = newChunk(id, "text-"+id)
	}
	if len(chunks) > 0 {
		require.NoError(t, repo.AddChunks(ctx, name, chunks...))
	}
}

func TestCreateCollection(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	created, err := repo.CreateCollection(ctx, &core.Collection{
		Name:     "v1_chunks",
		Metadata: map[string]string{"embed_model": "embeddinggemma"},
	})
	require.NoError(t, err)
	assert.False(t, created.CreatedAt.IsZero())

	got, err := repo.GetCollection(ctx, "v1_chunks")
	require.NoError(t, err)
	assert.Equal(t, "embeddinggemma", got.Metadata["embed_model"])

	t.Run("duplicate name", func(t *testing.T) {
		_, err := repo.CreateCollection(ctx, &core.Collection{Name: "v1_chunks"})
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)
	})

	t.Run("invalid name", func(t *testing.T) {
		_, err := repo.CreateCollection(ctx, &core.Collection{Name: ""})
		assert.ErrorIs(t, err, core.ErrEmptyCollectionName)
	})
}

func TestGetCollection_NotFound(t *testing.T) {
	repo := setupRepository(t)

	_, err := repo.GetCollection(context.Background(), "missing")
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestGetOrCreateCollection(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	first, created, err := repo.GetOrCreateCollection(ctx, &core.Collection{
		Name:     "c",
		Metadata: map[string]string{"settings_hash": "one"},
	})
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := repo.GetOrCreateCollection(ctx, &core.Collection{
		Name:     "c",
		Metadata: map[string]string{"settings_hash": "two"},
	})
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "one", second.Metadata["settings_hash"], "existing collection is returned untouched")
	assert.True(t, first.CreatedAt.Equal(second.CreatedAt))
}

func TestUpdateCollectionMetadata(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	_, err := repo.CreateCollection(ctx, &core.Collection{
		Name:     "v1_chunks",
		Metadata: map[string]string{"embed_model": "old", "pipeline_version": "v1"},
	})
	require.NoError(t, err)
	original, err := repo.GetCollection(ctx, "v1_chunks")
	require.NoError(t, err)
	createdAt := original.CreatedAt

	updated, err := repo.UpdateCollectionMetadata(ctx, "v1_chunks", map[string]string{"embed_model": "new"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"embed_model": "new", "pipeline_version": "v1"}, updated.Metadata)

	got, err := repo.GetCollection(ctx, "v1_chunks")
	require.NoError(t, err)
	assert.Equal(t, "new", got.Metadata["embed_model"])
	assert.True(t, got.CreatedAt.Equal(createdAt))
	assert.False(t, got.UpdatedAt.Before(createdAt))

	t.Run("nil metadata", func(t *testing.T) {
		_, err := repo.CreateCollection(ctx, &core.Collection{Name: "bare"})
		require.NoError(t, err)
		updated, err := repo.UpdateCollectionMetadata(ctx, "bare", map[string]string{"k": "v"})
		require.NoError(t, err)
		assert.Equal(t, map[string]string{"k": "v"}, updated.Metadata)
	})

	t.Run("missing collection", func(t *testing.T) {
		_, err := repo.UpdateCollectionMetadata(ctx, "absent", map[string]string{"k": "v"})
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestDeleteCollection(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	seedCollection(t, repo, "c", "a", "b")
	seedCollection(t, repo, "other", "a")

	require.NoError(t, repo.DeleteCollection(ctx, "c"))

	_, err := repo.GetCollection(ctx, "c")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// Recreating starts empty
	_, err = repo.CreateCollection(ctx, &core.Collection{Name: "c"})
	require.NoError(t, err)
	count, err := repo.CountChunks(ctx, "c")
	require.NoError(t, err)
	assert.Zero(t, count)

	// Other collections are untouched
	count, err = repo.CountChunks(ctx, "other")
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	t.Run("missing collection", func(t *testing.T) {
		err := repo.DeleteCollection(ctx, "missing")
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestListCollections(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	collections, err := repo.ListCollections(ctx)
	require.NoError(t, err)
	assert.Empty(t, collections)

	seedCollection(t, repo, "zeta")
	seedCollection(t, repo, "alpha")

	collections, err = repo.ListCollections(ctx)
	require.NoError(t, err)
	require.Len(t, collections, 2)
	assert.Equal(t, "alpha", collections[0].Name)
	assert.Equal(t, "zeta", collections[1].Name)
}

func TestAddChunks(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	seedCollection(t, repo, "c", "a")

	t.Run("inserts new ids", func(t *testing.T) {
		err := repo.AddChunks(ctx, "c", newChunk("b", "y"))
		require.NoError(t, err)

		chunks, err := repo.GetChunks(ctx, "c", "b")
		require.NoError(t, err)
		require.Len(t, chunks, 1)
		assert.Equal(t, "y", chunks[0].Text)
		assert.False(t, chunks[0].InsertedAt.IsZero())
	})

	t.Run("existing id rejects whole batch", func(t *testing.T) {
		err := repo.AddChunks(ctx, "c", newChunk("new", "z"), newChunk("a", "x"))
		require.Error(t, err)
		assert.ErrorIs(t, err, storage.ErrDuplicateKey)

		var dup *storage.DuplicateError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, []string{"a"}, dup.IDs)

		existing, err := repo.ExistingIDs(ctx, "c", "new")
		require.NoError(t, err)
		assert.Empty(t, existing, "no chunk of a rejected batch is written")
	})

	t.Run("repeated id within call", func(t *testing.T) {
		err := repo.AddChunks(ctx, "c", newChunk("d", "1"), newChunk("d", "2"))
		var dup *storage.DuplicateError
		require.True(t, errors.As(err, &dup))
		assert.Equal(t, []string{"d"}, dup.IDs)
	})

	t.Run("missing collection", func(t *testing.T) {
		err := repo.AddChunks(ctx, "missing", newChunk("a", "x"))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestUpsertChunks(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	seedCollection(t, repo, "c", "a")

	before, err := repo.GetChunks(ctx, "c", "a")
	require.NoError(t, err)
	require.Len(t, before, 1)

	replacement := newChunk("a", "new text")
	replacement.Metadata = map[string]core.MetadataValue{"rel_path": core.StringValue("a.md")}

	inserted, err := repo.UpsertChunks(ctx, "c", replacement, newChunk("b", "y"))
	require.NoError(t, err)
	assert.Equal(t, 1, inserted)

	after, err := repo.GetChunks(ctx, "c", "a", "b")
	require.NoError(t, err)
	require.Len(t, after, 2)
	assert.Equal(t, "new text", after[0].Text)
	assert.Equal(t, "a.md", after[0].Metadata["rel_path"].String)
	assert.True(t, before[0].InsertedAt.Equal(after[0].InsertedAt), "replacement keeps InsertedAt")
	assert.Equal(t, "y", after[1].Text)

	t.Run("missing collection", func(t *testing.T) {
		_, err := repo.UpsertChunks(ctx, "missing", newChunk("a", "x"))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})
}

func TestExistingIDs(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	seedCollection(t, repo, "c", "a", "b")

	existing, err := repo.ExistingIDs(ctx, "c", "x", "b", "a", "b")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, existing)
}

func TestScanChunks(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()
	seedCollection(t, repo, "c", "b", "a", "c")

	var ids []string
	err := repo.ScanChunks(ctx, "c", func(chunk *core.Chunk) error {
		ids = append(ids, chunk.ID)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, ids)

	t.Run("callback error stops scan", func(t *testing.T) {
		stop := errors.New("stop")
		calls := 0
		err := repo.ScanChunks(ctx, "c", func(*core.Chunk) error {
			calls++
			return stop
		})
		assert.ErrorIs(t, err, stop)
		assert.Equal(t, 1, calls)
	})
}

func TestRepositoryClosed(t *testing.T) {
	repo, err := NewMemoryRepository()
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	_, err = repo.GetCollection(context.Background(), "c")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestTimestampsMatchStoredValues(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	created, err := repo.CreateCollection(ctx, &core.Collection{Name: "c"})
	require.NoError(t, err)
	stored, err := repo.GetCollection(ctx, "c")
	require.NoError(t, err)
	assert.True(t, created.CreatedAt.Equal(stored.CreatedAt))
	assert.True(t, created.UpdatedAt.Equal(stored.UpdatedAt))

	added := newChunk("a", "x")
	require.NoError(t, repo.AddChunks(ctx, "c", added))
	upserted := newChunk("b", "y")
	_, err = repo.UpsertChunks(ctx, "c", upserted)
	require.NoError(t, err)

	chunks, err := repo.GetChunks(ctx, "c", "a", "b")
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	for i, want := range []*core.Chunk{added, upserted} {
		assert.True(t, want.InsertedAt.Equal(chunks[i].InsertedAt), want.ID)
		assert.True(t, want.UpdatedAt.Equal(chunks[i].UpdatedAt), want.ID)
	}
	assert.Zero(t, chunks[0].InsertedAt.Nanosecond()%int(time.Microsecond))
}
