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

package storage

import (
	"context"

	"github.com/poiesic/chunkstore/core"
)

// CollectionRepository provides operations for named chunk collections and
// the chunks they hold. Chunk operations address a collection by name and
// return ErrNotFound when that collection does not exist.
type CollectionRepository interface {
	// CreateCollection creates an empty collection.
	// Sets CreatedAt and UpdatedAt.
	// Returns ErrDuplicateKey if a collection with the same name exists.
	CreateCollection(ctx context.Context, collection *core.Collection) (*core.Collection, error)

	// GetCollection retrieves a collection by name.
	// Returns ErrNotFound if the collection doesn't exist.
	GetCollection(ctx context.Context, name string) (*core.Collection, error)

	// GetOrCreateCollection returns the named collection, creating it from the
	// given template when absent. The boolean reports whether it was created.
	GetOrCreateCollection(ctx context.Context, collection *core.Collection) (*core.Collection, bool, error)

	// UpdateCollectionMetadata merges metadata into the collection's metadata.
	// Returns ErrNotFound if the collection doesn't exist.
	UpdateCollectionMetadata(ctx context.Context, name string, metadata map[string]string) (*core.Collection, error)

	// DeleteCollection removes a collection and every chunk in it.
	// Returns ErrNotFound if the collection doesn't exist.
	DeleteCollection(ctx context.Context, name string) error

	// ListCollections returns all collections ordered by name.
	ListCollections(ctx context.Context) ([]*core.Collection, error)

	// AddChunks inserts chunks into a collection in a single transaction.
	// Returns ErrDuplicateKey, and writes nothing, if any chunk ID already
	// exists in the collection or repeats within the call.
	AddChunks(ctx context.Context, collection string, chunks ...*core.Chunk) error

	// UpsertChunks inserts or replaces chunks by ID in a single transaction.
	// Replaced chunks keep their original InsertedAt.
	// Returns the number of chunks that were inserted rather than replaced.
	UpsertChunks(ctx context.Context, collection string, chunks ...*core.Chunk) (int, error)

	// GetChunks retrieves chunks by ID.
	// Returns only the chunks that exist (no error for missing IDs).
	GetChunks(ctx context.Context, collection string, ids ...string) ([]*core.Chunk, error)

	// ExistingIDs returns the subset of ids already stored in the collection,
	// in the order they were given.
	ExistingIDs(ctx context.Context, collection string, ids ...string) ([]string, error)

	// CountChunks returns the number of chunks in a collection.
	CountChunks(ctx context.Context, collection string) (int, error)

	// ScanChunks calls fn for every chunk in the collection in ID order.
	// Iteration stops at the first error returned by fn.
	ScanChunks(ctx context.Context, collection string, fn func(*core.Chunk) error) error

	// Close releases resources held by the repository.
	Close() error
}

// Location is the persistence location backing a CollectionRepository.
// It is passed explicitly so separate runs and tests use isolated stores.
type Location interface {
	// Open opens the repository stored at this location, creating it if needed.
	Open() (CollectionRepository, error)

	// Reset deletes all persisted state. It must not be called while a
	// repository opened from this location is still open.
	Reset() error

	// String describes the location for logs and manifests.
	String() string
}
