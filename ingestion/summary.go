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

import "time"

// Summary reports the outcome of one Ingest call.
type Summary struct {
	// RunID uniquely identifies the run in logs and the manifest.
	RunID      string
	Mode       Mode
	Collection string
	ChunksPath string
	PersistDir string

	// Read is the number of records in the chunks file.
	Read int
	// Planned is the number of records left to write after the mode's
	// duplicate policy was applied.
	Planned int

	Inserted int
	Replaced int

	CollectionDeleted bool
	CollectionCreated bool
	StoreReset        bool
	DryRun            bool

	SettingsHash string
	Elapsed      time.Duration
}

// Written returns the number of records written to the store.
func (s *Summary) Written() int {
	return s.Inserted + s.Replaced
}
