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

package badger

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/poiesic/chunkstore/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocation_PersistsAcrossOpens(t *testing.T) {
	loc := NewLocation(filepath.Join(t.TempDir(), "db"))
	ctx := context.Background()

	repo, err := loc.Open()
	require.NoError(t, err)
	_, err = repo.CreateCollection(ctx, &core.Collection{Name: "c"})
	require.NoError(t, err)
	require.NoError(t, repo.AddChunks(ctx, "c", newChunk("a", "x")))
	require.NoError(t, repo.Close())

	repo, err = loc.Open()
	require.NoError(t, err)
	defer repo.Close()

	chunks, err := repo.GetChunks(ctx, "c", "a")
	require.NoError(t, err)
	require.Len(t, chunks, 1)
	assert.Equal(t, "x", chunks[0].Text)
}

func TestLocation_Reset(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "db")
	loc := NewLocation(dir)

	repo, err := loc.Open()
	require.NoError(t, err)
	_, err = repo.CreateCollection(context.Background(), &core.Collection{Name: "c"})
	require.NoError(t, err)
	require.NoError(t, repo.Close())

	require.NoError(t, loc.Reset())
	_, err = os.Stat(dir)
	assert.True(t, os.IsNotExist(err))

	t.Run("missing directory is fine", func(t *testing.T) {
		assert.NoError(t, loc.Reset())
	})
}

func TestLocation_ResetRefusesUnsafePaths(t *testing.T) {
	cwd, err := os.Getwd()
	require.NoError(t, err)

	for _, dir := range []string{"", "/", cwd} {
		err := NewLocation(dir).Reset()
		assert.ErrorIs(t, err, ErrUnsafeReset, "dir %q", dir)
	}
}
