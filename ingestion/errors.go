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
	"strings"
)

var (
	// ErrInvalidInput matches every InputError.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConflict matches every ConflictError.
	ErrConflict = errors.New("id conflict")

	// ErrStore matches every StoreError.
	ErrStore = errors.New("store failure")

	// ErrRepositoryRequired is returned when no storage location is provided.
	ErrRepositoryRequired = errors.New("storage location required")

	// ErrInvalidMode is wrapped by InputError when a mode name is not recognized.
	ErrInvalidMode = errors.New("unknown mode")

	// ErrInvalidOption is returned by NewIngester for an unusable option value.
	ErrInvalidOption = errors.New("invalid ingester option")

	// ErrEmbedding wraps failures of the embedding service.
	ErrEmbedding = errors.New("embedding failed")
)

// conflictSampleSize bounds how many conflicting IDs an error message lists.
const conflictSampleSize = 10

// InputError reports a chunks file that is missing, unreadable, or holds an
// invalid record. Line is 1-based; 0 means the error is not tied to a line.
type InputError struct {
	Path string
	Line int
	Err  error
}

func (e *InputError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: %s line %d: %v", ErrInvalidInput, e.Path, e.Line, e.Err)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %v", ErrInvalidInput, e.Path, e.Err)
	}
	return fmt.Sprintf("%s: %v", ErrInvalidInput, e.Err)
}

func (e *InputError) Unwrap() error { return e.Err }

// Is reports whether target is ErrInvalidInput.
func (e *InputError) Is(target error) bool { return target == ErrInvalidInput }

// ConflictError reports incoming IDs that already exist in the destination
// collection, or repeat within the input, when the mode forbids overwrites.
type ConflictError struct {
	Collection string
	IDs        []string
}

func (e *ConflictError) Error() string {
	sample := e.IDs
	if len(sample) > conflictSampleSize {
		sample = sample[:conflictSampleSize]
	}
	return fmt.Sprintf("%s: %d duplicate ids for collection %q (sample: %s)",
		ErrConflict, len(e.IDs), e.Collection, strings.Join(sample, ", "))
}

// Is reports whether target is ErrConflict.
func (e *ConflictError) Is(target error) bool { return target == ErrConflict }

// StoreError reports an operation the collection store rejected.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStore, e.Op, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Is reports whether target is ErrStore.
func (e *StoreError) Is(target error) bool { return target == ErrStore }

func storeError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
