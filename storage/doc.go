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

// Package storage provides the storage abstraction layer for chunkstore.
//
// This package defines the repository interface that decouples the ingestion
// driver from the storage engine. The BadgerDB implementation lives in
// storage/badger.
//
// # Architecture
//
//   - CollectionRepository: collection lifecycle plus chunk add/upsert/read
//   - Location: the persistence location a repository is opened from
//
// # Usage
//
//	loc := badger.NewLocation("/path/to/db")
//	repo, err := loc.Open()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer repo.Close()
//
// Use in tests with in-memory storage:
//
//	repo, err := badger.MemoryLocation().Open()
//
// # Context Support
//
// All repository methods accept context.Context. Pass context.Background()
// for operations without specific timeout requirements.
package storage
