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

package mock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEmbedder_Deterministic(t *testing.T) {
	embedder := NewMockEmbedder()
	ctx := context.Background()

	first, err := embedder.EmbedTexts(ctx, []string{"a", "b"})
	require.NoError(t, err)
	second, err := embedder.EmbedTexts(ctx, []string{"a"})
	require.NoError(t, err)

	require.Len(t, first, 2)
	assert.Len(t, first[0], 8)
	assert.Equal(t, first[0], second[0])
	assert.NotEqual(t, first[0], first[1])
	assert.Equal(t, 2, embedder.CallCount())
	assert.Equal(t, 3, embedder.TextCount())
}

func TestMockEmbedder_InjectedFunc(t *testing.T) {
	boom := errors.New("service down")
	embedder := NewMockEmbedder().WithEmbedTextsFunc(func(ctx context.Context, texts []string) ([][]float32, error) {
		return nil, boom
	})

	_, err := embedder.EmbedTexts(context.Background(), []string{"a"})
	assert.ErrorIs(t, err, boom)

	embedder.Reset()
	assert.Zero(t, embedder.CallCount())
	_, err = embedder.EmbedTexts(context.Background(), []string{"a"})
	assert.NoError(t, err)
}
