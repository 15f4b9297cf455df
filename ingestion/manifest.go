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
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-crypt/x/blake2b"
)

const (
	// PipelineVersion identifies the chunk pipeline layout this loader targets.
	PipelineVersion = "v1"
	// LoaderVersion identifies this loader in collection metadata and manifests.
	LoaderVersion = "v0.1"
)

// Settings are the inputs that determine what a run writes. Their hash is
// recorded on new collections and in the run manifest so runs can be compared.
type Settings struct {
	PipelineVersion string `json:"pipeline_version"`
	LoaderVersion   string `json:"stage3_version"`
	ChunksPath      string `json:"chunks_jsonl"`
	PersistDir      string `json:"persist_dir"`
	Collection      string `json:"collection"`
	EmbedModel      string `json:"embed_model"`
	BatchSize       int    `json:"batch_size"`
	ResetStore      bool   `json:"reset_db"`
	Mode            Mode   `json:"mode"`
}

// Hash returns a stable 16 hex character BLAKE2b digest of the settings.
func (s Settings) Hash() string {
	// Field order is fixed by the struct, so the encoding is stable.
	blob, _ := json.Marshal(s)
	h, _ := blake2b.New(8, nil)
	h.Write(blob)
	return hex.EncodeToString(h.Sum(nil))
}

// Manifest is the JSON record written after a successful run.
type Manifest struct {
	RunID           string        `json:"run_id"`
	PipelineVersion string        `json:"pipeline_version"`
	LoaderVersion   string        `json:"stage3_version"`
	Settings        Settings      `json:"settings"`
	SettingsHash    string        `json:"settings_hash"`
	Counts          ManifestCount `json:"counts"`
	FinishedAt      time.Time     `json:"finished_at"`
	ElapsedSeconds  float64       `json:"elapsed_seconds"`
}

// ManifestCount holds the record counts of a run.
type ManifestCount struct {
	Chunks   int `json:"chunks"`
	Added    int `json:"added"`
	Inserted int `json:"inserted"`
	Replaced int `json:"replaced"`
}

// newManifest builds the manifest for a finished run.
func newManifest(summary *Summary, settings Settings, finishedAt time.Time) *Manifest {
	return &Manifest{
		RunID:           summary.RunID,
		PipelineVersion: settings.PipelineVersion,
		LoaderVersion:   settings.LoaderVersion,
		Settings:        settings,
		SettingsHash:    summary.SettingsHash,
		Counts: ManifestCount{
			Chunks:   summary.Read,
			Added:    summary.Inserted + summary.Replaced,
			Inserted: summary.Inserted,
			Replaced: summary.Replaced,
		},
		FinishedAt:     finishedAt.UTC(),
		ElapsedSeconds: summary.Elapsed.Seconds(),
	}
}

// WriteManifest writes m as indented JSON to path, replacing any existing file.
func WriteManifest(path string, m *Manifest) error {
	blob, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create manifest directory: %w", err)
		}
	}
	if err := os.WriteFile(path, append(blob, '\n'), 0o644); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	return nil
}

// ReadManifest loads a manifest written by WriteManifest.
func ReadManifest(path string) (*Manifest, error) {
	blob, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var m Manifest
	if err := json.Unmarshal(blob, &m); err != nil {
		return nil, fmt.Errorf("decode manifest %s: %w", path, err)
	}
	return &m, nil
}
