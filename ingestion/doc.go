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

// Package ingestion loads chunks files into a persistent collection.
//
// An Ingester reads a JSON-lines chunks file, checks it completely, and then
// applies it to one collection under a Mode:
//   - ModeRebuild deletes the collection (optionally the whole store) and loads it again
//   - ModeAppend adds records and fails with a ConflictError if any ID is already stored
//   - ModeUpsert inserts new records and replaces existing ones by ID
//
// Each mode is a Strategy, so its conflict policy can be tested without a
// chunks file. Records are optionally embedded and written in batches, one
// store transaction per batch. Runs are single-threaded.
package ingestion
