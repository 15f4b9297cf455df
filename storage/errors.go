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
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates that the requested record or collection was not found.
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateKey indicates a duplicate key violation.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrStorageClosed indicates that the storage backend is closed.
	ErrStorageClosed = errors.New("storage is closed")

	// ErrSerializationFailed indicates a serialization/deserialization failure.
	ErrSerializationFailed = errors.New("serialization failed")
)

// DuplicateError reports the chunk IDs that collided with keys already present
// in a collection (or repeated within one write). It matches ErrDuplicateKey.
type DuplicateError struct {
	Collection string
	IDs        []string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: %d ids in collection %q", ErrDuplicateKey, len(e.IDs), e.Collection)
}

// Is reports whether target is ErrDuplicateKey.
func (e *DuplicateError) Is(target error) bool {
	return target == ErrDuplicateKey
}
