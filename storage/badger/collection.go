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
	"fmt"
	"maps"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/chunkstore/core"
	"github.com/poiesic/chunkstore/storage"
)

// CollectionRepository implements storage.CollectionRepository for BadgerDB.
type CollectionRepository struct {
	backend     *Backend
	ownsBackend bool
}

var _ storage.CollectionRepository = (*CollectionRepository)(nil)

// NewCollectionRepository creates a new CollectionRepository on a shared backend.
// The caller remains responsible for closing the backend.
func NewCollectionRepository(backend *Backend) *CollectionRepository {
	return &CollectionRepository{
		backend: backend,
	}
}

// Close closes the backend if the repository opened it.
func (r *CollectionRepository) Close() error {
	if r.ownsBackend {
		return r.backend.Close()
	}
	return nil
}

// CreateCollection creates an empty collection.
func (r *CollectionRepository) CreateCollection(ctx context.Context, collection *core.Collection) (*core.Collection, error) {
	if err := core.ValidateCollectionName(collection.Name); err != nil {
		return nil, err
	}
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeCollectionKey(collection.Name)
		existing, err := r.readCollection(tx, key)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("%w: collection %q", storage.ErrDuplicateKey, collection.Name)
		}
		if err := r.writeNewCollection(tx, collection); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return collection, nil
}

// GetCollection retrieves a collection by name.
func (r *CollectionRepository) GetCollection(ctx context.Context, name string) (*core.Collection, error) {
	var result *core.Collection
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.requireCollection(tx, name)
		return err
	}, false)
	return result, err
}

// GetOrCreateCollection returns the named collection, creating it when absent.
func (r *CollectionRepository) GetOrCreateCollection(ctx context.Context, collection *core.Collection) (*core.Collection, bool, error) {
	if err := core.ValidateCollectionName(collection.Name); err != nil {
		return nil, false, err
	}
	var (
		result  *core.Collection
		created bool
	)
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		existing, err := r.readCollection(tx, makeCollectionKey(collection.Name))
		if err != nil {
			return err
		}
		if existing != nil {
			result = existing
			return nil
		}
		if err := r.writeNewCollection(tx, collection); err != nil {
			return err
		}
		result, created = collection, true
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, false, err
	}
	return result, created, nil
}

// UpdateCollectionMetadata merges metadata into the collection's metadata.
func (r *CollectionRepository) UpdateCollectionMetadata(ctx context.Context, name string, metadata map[string]string) (*core.Collection, error) {
	var result *core.Collection
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		collection, err := r.requireCollection(tx, name)
		if err != nil {
			return err
		}
		if collection.Metadata == nil {
			collection.Metadata = make(map[string]string, len(metadata))
		}
		maps.Copy(collection.Metadata, metadata)
		if err := r.touchCollection(tx, collection, timestamp()); err != nil {
			return err
		}
		result = collection
		return tx.Commit()
	}, true)
	if err != nil {
		return nil, err
	}
	return result, nil
}

// DeleteCollection removes a collection and every chunk in it.
// Chunks are removed before the collection entry so an interrupted delete
// leaves the collection visible and can simply be repeated.
func (r *CollectionRepository) DeleteCollection(ctx context.Context, name string) error {
	if _, err := r.GetCollection(ctx, name); err != nil {
		return err
	}

	keys, err := r.backend.KeysWithPrefix(makeChunkPrefix(name))
	if err != nil {
		return err
	}
	if err := r.backend.DeleteKeys(keys); err != nil {
		return err
	}
	r.backend.logger.Debug("deleted collection chunks", "collection", name, "chunks", len(keys))

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeCollectionKey(name)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// ListCollections returns all collections ordered by name.
func (r *CollectionRepository) ListCollections(ctx context.Context) ([]*core.Collection, error) {
	var results []*core.Collection
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(collectionPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var collection *core.Collection
			err := iter.Item().Value(func(val []byte) error {
				var err error
				collection, err = storage.UnmarshalCollection(val)
				return err
			})
			if err != nil {
				return err
			}
			results = append(results, collection)
		}
		return nil
	}, false)
	return results, err
}

// AddChunks inserts chunks that must not already exist.
func (r *CollectionRepository) AddChunks(ctx context.Context, collection string, chunks ...*core.Chunk) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		coll, err := r.requireCollection(tx, collection)
		if err != nil {
			return err
		}

		// Check every key before writing so a conflict leaves the batch unapplied
		var duplicates []string
		seen := make(map[string]struct{}, len(chunks))
		for _, chunk := range chunks {
			if _, ok := seen[chunk.ID]; ok {
				duplicates = append(duplicates, chunk.ID)
				continue
			}
			seen[chunk.ID] = struct{}{}

			exists, err := keyExists(tx, makeChunkKey(collection, chunk.ID))
			if err != nil {
				return err
			}
			if exists {
				duplicates = append(duplicates, chunk.ID)
			}
		}
		if len(duplicates) > 0 {
			return &storage.DuplicateError{Collection: collection, IDs: duplicates}
		}

		now := timestamp()
		for _, chunk := range chunks {
			chunk.InsertedAt = now
			chunk.UpdatedAt = now
			if err := tx.Set(makeChunkKey(collection, chunk.ID), storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}

		if err := r.touchCollection(tx, coll, now); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// UpsertChunks inserts or replaces chunks by ID.
func (r *CollectionRepository) UpsertChunks(ctx context.Context, collection string, chunks ...*core.Chunk) (int, error) {
	inserted := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		coll, err := r.requireCollection(tx, collection)
		if err != nil {
			return err
		}

		now := timestamp()
		for _, chunk := range chunks {
			key := makeChunkKey(collection, chunk.ID)

			// Reads see this transaction's own pending writes, so a repeated ID
			// within one call counts as a replacement.
			old, err := r.readChunk(tx, key)
			if err != nil {
				return err
			}
			if old != nil {
				chunk.InsertedAt = old.InsertedAt
			} else {
				chunk.InsertedAt = now
				inserted++
			}
			chunk.UpdatedAt = now

			if err := tx.Set(key, storage.MarshalChunk(chunk)); err != nil {
				return err
			}
		}

		if err := r.touchCollection(tx, coll, now); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}
	return inserted, nil
}

// GetChunks retrieves chunks by ID, skipping IDs that don't exist.
func (r *CollectionRepository) GetChunks(ctx context.Context, collection string, ids ...string) ([]*core.Chunk, error) {
	var results []*core.Chunk
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := r.requireCollection(tx, collection); err != nil {
			return err
		}
		for _, id := range ids {
			chunk, err := r.readChunk(tx, makeChunkKey(collection, id))
			if err != nil {
				return err
			}
			if chunk != nil {
				results = append(results, chunk)
			}
		}
		return nil
	}, false)
	return results, err
}

// ExistingIDs returns the subset of ids already stored, each reported once.
func (r *CollectionRepository) ExistingIDs(ctx context.Context, collection string, ids ...string) ([]string, error) {
	var existing []string
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := r.requireCollection(tx, collection); err != nil {
			return err
		}
		seen := make(map[string]struct{}, len(ids))
		for _, id := range ids {
			if _, ok := seen[id]; ok {
				continue
			}
			seen[id] = struct{}{}

			exists, err := keyExists(tx, makeChunkKey(collection, id))
			if err != nil {
				return err
			}
			if exists {
				existing = append(existing, id)
			}
		}
		return nil
	}, false)
	return existing, err
}

// CountChunks returns the number of chunks in a collection.
func (r *CollectionRepository) CountChunks(ctx context.Context, collection string) (int, error) {
	if _, err := r.GetCollection(ctx, collection); err != nil {
		return 0, err
	}
	keys, err := r.backend.KeysWithPrefix(makeChunkPrefix(collection))
	if err != nil {
		return 0, err
	}
	return len(keys), nil
}

// ScanChunks calls fn for every chunk in the collection in ID order.
func (r *CollectionRepository) ScanChunks(ctx context.Context, collection string, fn func(*core.Chunk) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if _, err := r.requireCollection(tx, collection); err != nil {
			return err
		}

		opts := badger.DefaultIteratorOptions
		opts.Prefix = makeChunkPrefix(collection)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			var chunk *core.Chunk
			err := iter.Item().Value(func(val []byte) error {
				var err error
				chunk, err = storage.UnmarshalChunk(val)
				return err
			})
			if err != nil {
				return err
			}
			if err := fn(chunk); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// timestamp returns the current time at the precision timestamps are stored
// with, so values handed back to callers match what a later read returns.
func timestamp() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

// writeNewCollection stamps and stores a collection that is known to be absent.
func (r *CollectionRepository) writeNewCollection(tx *badger.Txn, collection *core.Collection) error {
	collection.CreatedAt = timestamp()
	collection.UpdatedAt = collection.CreatedAt
	return tx.Set(makeCollectionKey(collection.Name), storage.MarshalCollection(collection))
}

// touchCollection records a write to the collection.
func (r *CollectionRepository) touchCollection(tx *badger.Txn, collection *core.Collection, now time.Time) error {
	collection.UpdatedAt = now
	return tx.Set(makeCollectionKey(collection.Name), storage.MarshalCollection(collection))
}

// requireCollection reads a collection, returning ErrNotFound when absent.
func (r *CollectionRepository) requireCollection(tx *badger.Txn, name string) (*core.Collection, error) {
	collection, err := r.readCollection(tx, makeCollectionKey(name))
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, fmt.Errorf("%w: collection %q", storage.ErrNotFound, name)
	}
	return collection, nil
}

// readCollection returns nil, nil if the key does not exist.
func (r *CollectionRepository) readCollection(tx *badger.Txn, key []byte) (*core.Collection, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var collection *core.Collection
	err = item.Value(func(val []byte) error {
		var err error
		collection, err = storage.UnmarshalCollection(val)
		return err
	})
	return collection, err
}

// readChunk returns nil, nil if the key does not exist.
func (r *CollectionRepository) readChunk(tx *badger.Txn, key []byte) (*core.Chunk, error) {
	item, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var chunk *core.Chunk
	err = item.Value(func(val []byte) error {
		var err error
		chunk, err = storage.UnmarshalChunk(val)
		return err
	})
	return chunk, err
}

func keyExists(tx *badger.Txn, key []byte) (bool, error) {
	_, err := tx.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return false, nil
	}
	return err == nil, err
}
