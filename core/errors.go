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

package core

import "errors"

// Domain validation errors
var (
	// ErrInvalidChunk indicates a Chunk failed validation.
	ErrInvalidChunk = errors.New("invalid chunk")

	// ErrInvalidCollection indicates a Collection failed validation.
	ErrInvalidCollection = errors.New("invalid collection")

	// ErrEmptyID indicates the chunk ID is empty.
	ErrEmptyID = errors.New("id cannot be empty")

	// ErrInvalidID indicates the chunk ID contains a forbidden byte.
	ErrInvalidID = errors.New("id contains a NUL byte")

	// ErrInvalidMetadata indicates a metadata value is not a supported scalar.
	ErrInvalidMetadata = errors.New("invalid metadata value")

	// ErrEmptyCollectionName indicates the collection name is empty.
	ErrEmptyCollectionName = errors.New("collection name cannot be empty")

	// ErrInvalidCollectionName indicates the collection name is too long or contains a NUL byte.
	ErrInvalidCollectionName = errors.New("invalid collection name")
)
