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
	"io"
	"time"
)

// Progress reports how many of a known number of records have been written.
// A nil writer or a non-positive interval disables reporting.
type Progress struct {
	writer       io.Writer
	total        int
	interval     int
	current      int
	lastReported int
	start        time.Time
}

// NewProgress starts tracking total records, reporting every interval.
func NewProgress(writer io.Writer, total, interval int) *Progress {
	return &Progress{
		writer:   writer,
		total:    total,
		interval: interval,
		start:    time.Now(),
	}
}

func (p *Progress) enabled() bool {
	return p.writer != nil && p.interval > 0
}

// Add records n more written records, reporting when an interval boundary
// has been crossed since the last report.
func (p *Progress) Add(n int) {
	p.current = min(p.current+n, p.total)
	if p.enabled() && p.current-p.lastReported >= p.interval {
		p.report()
		p.lastReported = p.current
	}
}

// Finish prints the final count and terminates the progress line.
func (p *Progress) Finish() {
	if !p.enabled() {
		return
	}
	p.report()
	fmt.Fprintln(p.writer)
}

func (p *Progress) report() {
	rate := 0.0
	if elapsed := time.Since(p.start).Seconds(); elapsed > 0 {
		rate = float64(p.current) / elapsed
	}
	percentage := 100.0
	if p.total > 0 {
		percentage = float64(p.current) / float64(p.total) * 100.0
	}
	fmt.Fprintf(p.writer, "\rWritten: %d/%d (%.1f%%) - %.1f records/s",
		p.current, p.total, percentage, rate)
}
