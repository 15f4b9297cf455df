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
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/poiesic/chunkstore/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeChunksFile writes lines, newline-terminated, to a file in a temp dir.
func writeChunksFile(t *testing.T, lines ...string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "chunks.jsonl")
	content := ""
	if len(lines) > 0 {
		content = strings.Join(lines, "\n") + "\n"
	}
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestReadChunks(t *testing.T) {
	path := writeChunksFile(t,
		`{"id":"a","text":"x"}`,
		`{"id":"b","text":"y","metadata":{"source_uri":"notes/b.md","chunk_index":3,"draft":false,"entry_date":null}}`,
	)

	chunks, err := ReadChunks(path)
	require.NoError(t, err)
	require.Len(t, chunks, 2)

	assert.Equal(t, "a", chunks[0].ID)
	assert.Equal(t, "x", chunks[0].Text)
	assert.Equal(t, core.ContentHash("x"), chunks[0].ContentHash)
	assert.Nil(t, chunks[0].Metadata)

	b := chunks[1]
	assert.Equal(t, "b", b.ID)
	assert.Equal(t, core.StringValue("notes/b.md"), b.Metadata["source_uri"])
	assert.Equal(t, core.NumberValue(3), b.Metadata["chunk_index"])
	assert.Equal(t, core.BoolValue(false), b.Metadata["draft"])
	assert.NotContains(t, b.Metadata, "entry_date", "null metadata is dropped")
}

func TestReadChunks_Fallbacks(t *testing.T) {
	path := writeChunksFile(t,
		`{"text":"from stage two","metadata":{"chunk_id":"doc1#0"}}`,
		`{"id":"c","content":"content alias"}`,
		`{"id":"d","text":"text wins","content":"ignored"}`,
	)

	chunks, err := ReadChunks(path)
	require.NoError(t, err)
	require.Len(t, chunks, 3)

	assert.Equal(t, "doc1#0", chunks[0].ID)
	assert.Equal(t, "content alias", chunks[1].Text)
	assert.Equal(t, "text wins", chunks[2].Text)
}

func TestReadChunks_SkipsBlankLinesAndBOM(t *testing.T) {
	path := writeChunksFile(t,
		"\ufeff"+`{"id":"a","text":"x"}`,
		"",
		"   \t",
		`{"id":"b","text":"y"}`,
		"",
		"",
	)

	chunks, err := ReadChunks(path)
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "a", chunks[0].ID)
	assert.Equal(t, "b", chunks[1].ID)
}

func TestReadChunks_EmptyFile(t *testing.T) {
	chunks, err := ReadChunks(writeChunksFile(t))
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestReadChunks_EmptyText(t *testing.T) {
	chunks, err := ReadChunks(writeChunksFile(t,
		`{"id":"a","text":""}`,
		`{"id":"b","text":"   "}`,
	))
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "", chunks[0].Text)
	assert.Equal(t, core.ContentHash(""), chunks[0].ContentHash)
	assert.Equal(t, "   ", chunks[1].Text)
}

func TestReadChunks_KeepsDuplicates(t *testing.T) {
	chunks, err := ReadChunks(writeChunksFile(t,
		`{"id":"a","text":"x"}`,
		`{"id":"a","text":"x"}`,
	))
	require.NoError(t, err)
	assert.Len(t, chunks, 2, "duplicate handling belongs to the mode strategy")
}

func TestReadChunks_InvalidLines(t *testing.T) {
	tests := []struct {
		name    string
		line    string
		wantErr error
	}{
		{name: "malformed json", line: `{"id":"a","text":`},
		{name: "not an object", line: `["a","x"]`},
		{name: "trailing value", line: `{"id":"a","text":"x"} {"id":"b","text":"y"}`},
		{name: "numeric id", line: `{"id":7,"text":"x"}`},
		{name: "missing id", line: `{"text":"x"}`, wantErr: core.ErrEmptyID},
		{name: "empty id", line: `{"id":"","text":"x"}`, wantErr: core.ErrEmptyID},
		{name: "missing text", line: `{"id":"a"}`, wantErr: errMissingText},
		{name: "null text", line: `{"id":"a","text":null}`, wantErr: errMissingText},
		{name: "nested metadata", line: `{"id":"a","text":"x","metadata":{"tags":["a","b"]}}`, wantErr: core.ErrInvalidMetadata},
		{name: "object metadata", line: `{"id":"a","text":"x","metadata":{"pos":{"line":1}}}`, wantErr: core.ErrInvalidMetadata},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeChunksFile(t,
				`{"id":"ok1","text":"fine"}`,
				"",
				tt.line,
				`{"id":"ok2","text":"never read"}`,
			)

			chunks, err := ReadChunks(path)
			require.Error(t, err)
			assert.Nil(t, chunks)
			assert.ErrorIs(t, err, ErrInvalidInput)

			var inputErr *InputError
			require.True(t, errors.As(err, &inputErr))
			assert.Equal(t, path, inputErr.Path)
			assert.Equal(t, 3, inputErr.Line, "blank lines still count toward line numbers")
			assert.Contains(t, err.Error(), "line 3")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestReadChunks_RequiredMetadata(t *testing.T) {
	path := writeChunksFile(t,
		`{"id":"a","text":"x","metadata":{"source_uri":"a.md","chunk_index":0}}`,
		`{"id":"b","text":"y","metadata":{"source_uri":"","chunk_index":1}}`,
	)

	chunks, err := ReadChunks(path, "chunk_index")
	require.NoError(t, err)
	assert.Len(t, chunks, 2)

	_, err = ReadChunks(path, "source_uri", "chunk_index")
	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, 2, inputErr.Line)
	assert.ErrorIs(t, err, errMissingMetadata)
	assert.Contains(t, err.Error(), "source_uri")

	_, err = ReadChunks(path, "heading_path")
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, 1, inputErr.Line)
}

func TestReadChunks_MissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.jsonl")

	_, err := ReadChunks(path)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.ErrorIs(t, err, os.ErrNotExist)

	var inputErr *InputError
	require.ErrorAs(t, err, &inputErr)
	assert.Equal(t, 0, inputErr.Line)
	assert.Contains(t, err.Error(), path)
}

func TestReadChunks_LongLine(t *testing.T) {
	text := strings.Repeat("long ", 40_000)
	chunks, err := ReadChunks(writeChunksFile(t, `{"id":"big","text":"`+text+`"}`))
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, text, chunks[0].Text)
}
