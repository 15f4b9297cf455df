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
	"testing"
	"time"

	"github.com/poiesic/chunkstore/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalUnmarshalChunk(t *testing.T) {
	now := time.Now().UTC().Truncate(time.Microsecond)
	chunk := &core.Chunk{
		ID:          "a",
		Text:        "x",
		ContentHash: core.ContentHash("x"),
		Metadata:    map[string]core.MetadataValue{"rel_path": core.StringValue("a.md")},
		InsertedAt:  now,
		UpdatedAt:   now,
	}

	data := MarshalChunk(chunk)
	require.NotEmpty(t, data)

	decoded, err := UnmarshalChunk(data)
	require.NoError(t, err)
	assert.Equal(t, chunk.ID, decoded.ID)
	assert.Equal(t, chunk.Text, decoded.Text)
	assert.Equal(t, chunk.Metadata, decoded.Metadata)
	assert.Empty(t, decoded.Vector)
}

func TestUnmarshalChunk_Invalid(t *testing.T) {
	_, err := UnmarshalChunk([]byte{})
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestUnmarshalCollection_Invalid(t *testing.T) {
	data := MarshalCollection(&core.Collection{Name: "v1_chunks"})
	_, err := UnmarshalCollection(data[:len(data)-1])
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestUnmarshal_TimesAreUTC(t *testing.T) {
	local := time.Date(2025, 3, 1, 12, 30, 0, 123456000, time.FixedZone("CET", 3600))

	chunk, err := UnmarshalChunk(MarshalChunk(&core.Chunk{ID: "a", InsertedAt: local, UpdatedAt: local}))
	require.NoError(t, err)
	assert.Equal(t, local.UTC(), chunk.InsertedAt)
	assert.Equal(t, local.UTC(), chunk.UpdatedAt)

	collection, err := UnmarshalCollection(MarshalCollection(&core.Collection{Name: "c", CreatedAt: local, UpdatedAt: local}))
	require.NoError(t, err)
	assert.Equal(t, local.UTC(), collection.CreatedAt)
	assert.Equal(t, local.UTC(), collection.UpdatedAt)
}
