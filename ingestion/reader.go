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
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/poiesic/chunkstore/core"
)

// maxLineSize bounds a single JSON line. Chunks are small, but headings and
// metadata can make a line much longer than bufio's 64KiB default.
const maxLineSize = 64 << 20

var (
	errMissingText     = errors.New(`missing "text" field`)
	errMissingMetadata = errors.New("missing required metadata")
	utf8BOM            = []byte{0xEF, 0xBB, 0xBF}
)

// chunkLine is the JSON shape of one line of a chunks file. Stage-2 output
// carries the ID as metadata.chunk_id; "content" is accepted for "text".
type chunkLine struct {
	ID       *string        `json:"id"`
	Text     *string        `json:"text"`
	Content  *string        `json:"content"`
	Metadata map[string]any `json:"metadata"`
}

// ReadChunks loads every record of a JSON-lines chunks file, in file order.
//
// Blank and whitespace-only lines are skipped. Every other line must decode
// to a valid chunk carrying each of requiredMetadata with a non-empty value.
// The first bad line aborts the read with an InputError naming its line number.
func ReadChunks(path string, requiredMetadata ...string) ([]*core.Chunk, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &InputError{Path: path, Err: err}
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	var chunks []*core.Chunk
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Bytes()
		if lineNo == 1 {
			line = bytes.TrimPrefix(line, utf8BOM)
		}
		if len(bytes.TrimSpace(line)) == 0 {
			continue
		}

		chunk, err := parseChunkLine(line, requiredMetadata)
		if err != nil {
			return nil, &InputError{Path: path, Line: lineNo, Err: err}
		}
		chunks = append(chunks, chunk)
	}
	if err := scanner.Err(); err != nil {
		return nil, &InputError{Path: path, Line: lineNo + 1, Err: err}
	}

	return chunks, nil
}

// parseChunkLine decodes and validates a single non-blank line.
func parseChunkLine(line []byte, requiredMetadata []string) (*core.Chunk, error) {
	var raw chunkLine
	if err := json.Unmarshal(line, &raw); err != nil {
		return nil, err
	}

	metadata, err := parseMetadata(raw.Metadata)
	if err != nil {
		return nil, err
	}

	chunk := &core.Chunk{Metadata: metadata}
	switch {
	case raw.ID != nil:
		chunk.ID = *raw.ID
	case metadata["chunk_id"].Kind == core.MetadataString:
		chunk.ID = metadata["chunk_id"].String
	}

	switch {
	case raw.Text != nil:
		chunk.Text = *raw.Text
	case raw.Content != nil:
		chunk.Text = *raw.Content
	default:
		return nil, fmt.Errorf("chunk %q: %w", chunk.ID, errMissingText)
	}

	if err := core.ValidateChunk(chunk); err != nil {
		return nil, err
	}

	for _, key := range requiredMetadata {
		value, ok := metadata[key]
		if !ok || (value.Kind == core.MetadataString && value.String == "") {
			return nil, fmt.Errorf("chunk %q: %w: %q", chunk.ID, errMissingMetadata, key)
		}
	}

	chunk.ContentHash = core.ContentHash(chunk.Text)
	return chunk, nil
}

// parseMetadata converts decoded JSON metadata to scalar values.
// JSON nulls are dropped; objects and arrays are rejected.
func parseMetadata(raw map[string]any) (map[string]core.MetadataValue, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	metadata := make(map[string]core.MetadataValue, len(raw))
	for key, value := range raw {
		switch v := value.(type) {
		case nil:
			continue
		case string:
			metadata[key] = core.StringValue(v)
		case float64:
			metadata[key] = core.NumberValue(v)
		case bool:
			metadata[key] = core.BoolValue(v)
		default:
			return nil, fmt.Errorf("%w: metadata %q holds a %s, want string, number or bool",
				core.ErrInvalidMetadata, key, jsonKind(v))
		}
	}
	if len(metadata) == 0 {
		return nil, nil
	}
	return metadata, nil
}

func jsonKind(v any) string {
	switch v.(type) {
	case map[string]any:
		return "object"
	case []any:
		return "array"
	default:
		return fmt.Sprintf("%T", v)
	}
}
