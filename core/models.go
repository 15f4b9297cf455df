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

//go:generate go run ../cmd/musgen

import (
	"encoding/hex"
	"maps"
	"slices"
	"strconv"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ContentHash returns a deterministic BLAKE2b-128 digest of text, hex encoded.
// Identical text always yields the same hash.
func ContentHash(text string) string {
	h, _ := blake2b.New(16, nil) // 16 bytes = 128 bits
	h.Write([]byte(text))
	return hex.EncodeToString(h.Sum(nil))
}

// MetadataKind identifies the scalar type held by a MetadataValue.
type MetadataKind uint8

const (
	// MetadataString holds a string.
	MetadataString MetadataKind = iota + 1
	// MetadataNumber holds a float64.
	MetadataNumber
	// MetadataBool holds a bool.
	MetadataBool
)

// MetadataValue is a single scalar attached to a chunk.
type MetadataValue struct {
	Kind   MetadataKind
	String string
	Number float64
	Bool   bool
}

// StringValue wraps s as a MetadataValue.
func StringValue(s string) MetadataValue {
	return MetadataValue{Kind: MetadataString, String: s}
}

// NumberValue wraps n as a MetadataValue.
func NumberValue(n float64) MetadataValue {
	return MetadataValue{Kind: MetadataNumber, Number: n}
}

// BoolValue wraps b as a MetadataValue.
func BoolValue(b bool) MetadataValue {
	return MetadataValue{Kind: MetadataBool, Bool: b}
}

// Interface returns the value as a plain Go scalar (string, float64 or bool).
func (v MetadataValue) Interface() any {
	switch v.Kind {
	case MetadataString:
		return v.String
	case MetadataNumber:
		return v.Number
	case MetadataBool:
		return v.Bool
	default:
		return nil
	}
}

// Text renders the value as a string, e.g. for collection-level metadata.
func (v MetadataValue) Text() string {
	switch v.Kind {
	case MetadataString:
		return v.String
	case MetadataNumber:
		return strconv.FormatFloat(v.Number, 'g', -1, 64)
	case MetadataBool:
		return strconv.FormatBool(v.Bool)
	default:
		return ""
	}
}

// Chunk is one unit of pre-split source text stored in a collection.
// Chunks are keyed by ID; their position in the input file carries no meaning.
type Chunk struct {
	ID          string
	Text        string
	ContentHash string                   // Digest of Text, see ContentHash
	Metadata    map[string]MetadataValue // Optional scalar metadata
	Vector      []float32                // Embedding vector (empty when no embedder is configured)
	InsertedAt  time.Time                // When the chunk was first written to its collection
	UpdatedAt   time.Time                // When the chunk was last written
}

// MetadataKeys returns the chunk's metadata keys in sorted order.
func (c *Chunk) MetadataKeys() []string {
	return slices.Sorted(maps.Keys(c.Metadata))
}

// Collection is a named, persistent set of chunks.
type Collection struct {
	Name      string
	Metadata  map[string]string // Build provenance (pipeline version, embed model, settings hash)
	CreatedAt time.Time
	UpdatedAt time.Time
}
