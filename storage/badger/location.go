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
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/poiesic/chunkstore/storage"
)

// ErrUnsafeReset is returned when Reset is asked to remove a path that is
// empty, a filesystem root, or the current working directory.
var ErrUnsafeReset = errors.New("refusing to reset persistence directory")

// Location is a BadgerDB database directory on disk.
type Location struct {
	dir string
}

var _ storage.Location = (*Location)(nil)

// NewLocation returns the persistence location rooted at dir.
// Nothing is touched on disk until Open or Reset is called.
func NewLocation(dir string) *Location {
	return &Location{dir: dir}
}

// Dir returns the database directory.
func (l *Location) Dir() string {
	return l.dir
}

// String implements storage.Location.
func (l *Location) String() string {
	return l.dir
}

// Open opens (creating if needed) the database directory and returns a
// repository that closes the database when it is closed.
//
// Returns storage.CollectionRepository interface to enforce abstraction.
func (l *Location) Open() (storage.CollectionRepository, error) {
	backend, err := OpenBackend(l.dir, false)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", l.dir, err)
	}
	return &CollectionRepository{backend: backend, ownsBackend: true}, nil
}

// Reset deletes the database directory and everything below it.
// A missing directory is not an error.
func (l *Location) Reset() error {
	abs, err := filepath.Abs(l.dir)
	if err != nil {
		return err
	}
	cwd, err := os.Getwd()
	if err != nil {
		return err
	}
	if l.dir == "" || abs == filepath.Dir(abs) || abs == cwd {
		return fmt.Errorf("%w: %q", ErrUnsafeReset, l.dir)
	}
	return os.RemoveAll(abs)
}
