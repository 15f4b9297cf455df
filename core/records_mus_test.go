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
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChunkMUS(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	chunk := Chunk{
		ID:          "doc-1#intro",
		Text:        "Hello 世界",
		ContentHash: ContentHash("Hello 世界"),
		Metadata: map[string]MetadataValue{
			"rel_path":    StringValue("notes/a.md"),
			"chunk_index": NumberValue(2),
			"draft":       BoolValue(false),
		},
		Vector:     []float32{0.1, -0.2, 0.3},
		InsertedAt: now.Add(-time.Hour),
		UpdatedAt:  now,
	}

	buf := make([]byte, ChunkMUS.Size(chunk))
	n := ChunkMUS.Marshal(chunk, buf)
	require.Equal(t, len(buf), n)

	decoded, read, err := ChunkMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, n, read)
	assert.Equal(t, chunk.ID, decoded.ID)
	assert.Equal(t, chunk.Text, decoded.Text)
	assert.Equal(t, chunk.ContentHash, decoded.ContentHash)
	assert.Equal(t, chunk.Metadata, decoded.Metadata)
	assert.Equal(t, chunk.Vector, decoded.Vector)
	assert.True(t, chunk.InsertedAt.Equal(decoded.InsertedAt))
	assert.True(t, chunk.UpdatedAt.Equal(decoded.UpdatedAt))

	skipped, err := ChunkMUS.Skip(buf)
	require.NoError(t, err)
	assert.Equal(t, n, skipped)
}

func TestChunkMUS_DropsSubMicrosecond(t *testing.T) {
	at := time.Date(2025, 1, 2, 3, 4, 5, 123456789, time.UTC)
	chunk := Chunk{ID: "a", InsertedAt: at, UpdatedAt: at}

	buf := make([]byte, ChunkMUS.Size(chunk))
	ChunkMUS.Marshal(chunk, buf)
	decoded, _, err := ChunkMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.True(t, at.Truncate(time.Microsecond).Equal(decoded.InsertedAt))
}

func TestChunkMUS_Truncated(t *testing.T) {
	chunk := Chunk{
		ID:       "a",
		Text:     "some text",
		Metadata: map[string]MetadataValue{"k": StringValue("v")},
		Vector:   []float32{1, 2},
	}
	buf := make([]byte, ChunkMUS.Size(chunk))
	ChunkMUS.Marshal(chunk, buf)

	for _, cut := range []int{0, 1, len(buf) / 2, len(buf) - 1} {
		_, _, err := ChunkMUS.Unmarshal(buf[:cut])
		assert.Error(t, err, "cut at %d", cut)
	}
}

func TestMetadataValueMUS(t *testing.T) {
	tests := []struct {
		name  string
		value MetadataValue
	}{
		{"string", StringValue("notes/a.md")},
		{"number", NumberValue(-1.5)},
		{"bool", BoolValue(true)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := make([]byte, MetadataValueMUS.Size(tt.value))
			MetadataValueMUS.Marshal(tt.value, buf)

			decoded, _, err := MetadataValueMUS.Unmarshal(buf)
			require.NoError(t, err)
			assert.Equal(t, tt.value, decoded)
		})
	}
}

func TestCollectionMUS(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	collection := Collection{
		Name:      "v1_chunks",
		Metadata:  map[string]string{"embed_model": "embeddinggemma", "settings_hash": "abc"},
		CreatedAt: now,
		UpdatedAt: now,
	}

	buf := make([]byte, CollectionMUS.Size(collection))
	CollectionMUS.Marshal(collection, buf)

	decoded, _, err := CollectionMUS.Unmarshal(buf)
	require.NoError(t, err)
	assert.Equal(t, collection.Name, decoded.Name)
	assert.Equal(t, collection.Metadata, decoded.Metadata)
	assert.True(t, collection.CreatedAt.Equal(decoded.CreatedAt))

	_, _, err = CollectionMUS.Unmarshal(buf[:len(buf)/2])
	assert.Error(t, err)
}
