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
	"fmt"
	"strings"
)

// Mode selects the write-conflict policy of an ingestion run.
type Mode string

const (
	// ModeRebuild deletes the collection and loads it from scratch.
	ModeRebuild Mode = "rebuild"
	// ModeAppend inserts records and fails if any ID already exists.
	ModeAppend Mode = "append"
	// ModeUpsert inserts new records and replaces existing ones by ID.
	ModeUpsert Mode = "upsert"
)

// DefaultMode is used when no mode is given.
const DefaultMode = ModeUpsert

// Modes lists every supported mode.
func Modes() []Mode {
	return []Mode{ModeRebuild, ModeAppend, ModeUpsert}
}

// ParseMode parses a mode name case-insensitively. An empty name yields
// DefaultMode. Unknown names return an InputError wrapping ErrInvalidMode.
func ParseMode(name string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(name))) {
	case "":
		return DefaultMode, nil
	case ModeRebuild:
		return ModeRebuild, nil
	case ModeAppend:
		return ModeAppend, nil
	case ModeUpsert:
		return ModeUpsert, nil
	}
	return "", &InputError{Err: fmt.Errorf("%w %q (want rebuild, append or upsert)", ErrInvalidMode, name)}
}

func (m Mode) String() string {
	return string(m)
}

// Valid reports whether m is one of the supported modes.
func (m Mode) Valid() bool {
	switch m {
	case ModeRebuild, ModeAppend, ModeUpsert:
		return true
	}
	return false
}
