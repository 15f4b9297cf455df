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

import (
	"fmt"
	"strings"
)

// MaxCollectionNameLength bounds collection names so they stay usable as key prefixes.
const MaxCollectionNameLength = 256

// ValidateChunk validates a Chunk according to domain rules.
//
// Validation rules:
//   - ID must not be empty and must not contain a NUL byte
//   - Every metadata value must have a known kind
//
// NOT validated:
//   - Text (any string, including an empty one)
//   - ContentHash
//   - Vector (empty unless an embedder is configured)
func ValidateChunk(chunk *Chunk) error {
	if chunk == nil {
		return fmt.Errorf("%w: chunk is nil", ErrInvalidChunk)
	}

	if chunk.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrEmptyID)
	}

	if strings.IndexByte(chunk.ID, 0) >= 0 {
		return fmt.Errorf("%w: %w", ErrInvalidChunk, ErrInvalidID)
	}

	for key, value := range chunk.Metadata {
		if err := ValidateMetadataValue(value); err != nil {
			return fmt.Errorf("%w: metadata %q: %w", ErrInvalidChunk, key, err)
		}
	}

	return nil
}

// ValidateMetadataValue checks that a MetadataValue has a known kind.
func ValidateMetadataValue(value MetadataValue) error {
	switch value.Kind {
	case MetadataString, MetadataNumber, MetadataBool:
		return nil
	default:
		return fmt.Errorf("%w: kind %d", ErrInvalidMetadata, value.Kind)
	}
}

// ValidateCollectionName checks that name can identify a collection.
func ValidateCollectionName(name string) error {
	if strings.TrimSpace(name) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCollection, ErrEmptyCollectionName)
	}
	if len(name) > MaxCollectionNameLength {
		return fmt.Errorf("%w: %w: longer than %d bytes", ErrInvalidCollection, ErrInvalidCollectionName, MaxCollectionNameLength)
	}
	if strings.IndexByte(name, 0) >= 0 {
		return fmt.Errorf("%w: %w: contains a NUL byte", ErrInvalidCollection, ErrInvalidCollectionName)
	}
	return nil
}
