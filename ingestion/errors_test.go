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
	"errors"
	"fmt"
	"io/fs"
	"testing"

	"github.com/poiesic/chunkstore/storage"
	"github.com/stretchr/testify/assert"
)

func TestInputError(t *testing.T) {
	err := &InputError{Path: "chunks.jsonl", Line: 7, Err: errors.New("unexpected end of JSON input")}
	assert.Equal(t, "invalid input: chunks.jsonl line 7: unexpected end of JSON input", err.Error())
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.NotErrorIs(t, err, ErrConflict)

	missing := &InputError{Path: "chunks.jsonl", Err: fs.ErrNotExist}
	assert.Equal(t, "invalid input: chunks.jsonl: file does not exist", missing.Error())
	assert.ErrorIs(t, missing, fs.ErrNotExist)
}

func TestConflictError(t *testing.T) {
	ids := make([]string, 12)
	for i := range ids {
		ids[i] = fmt.Sprintf("id-%02d", i)
	}
	err := &ConflictError{Collection: "v1_chunks", IDs: ids}

	assert.ErrorIs(t, err, ErrConflict)
	assert.Contains(t, err.Error(), "12 duplicate ids")
	assert.Contains(t, err.Error(), "id-09")
	assert.NotContains(t, err.Error(), "id-10", "sample is capped")
}

func TestStoreError(t *testing.T) {
	err := storeError("add chunks", storage.ErrStorageClosed)
	assert.ErrorIs(t, err, ErrStore)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	assert.Equal(t, "store failure: add chunks: storage is closed", err.Error())
}
