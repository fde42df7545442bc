// Package metadata describes one query run for the machine-readable
// output formats (spec.md §6).
package metadata

import (
	"path/filepath"
	"time"
)

// RunMetadata contains information about one query-run execution.
type RunMetadata struct {
	Format         string                 `json:"format"` // "text", "json", "yaml", or "shell"
	Timestamp      string                 `json:"timestamp"`
	WorkspacePath  string                 `json:"workspace_path"`
	SpecVersion    string                 `json:"specVersion"`
	DurationMs     int64                  `json:"duration_ms,omitempty"`
	QueryCount     int                    `json:"query_count,omitempty"`
	ResolvedCount  int                    `json:"resolved_count,omitempty"`
	FailedCount    int                    `json:"failed_count,omitempty"`
	CacheHitCount  int                    `json:"cache_hit_count,omitempty"`
	Offline        bool                   `json:"offline,omitempty"`
	Properties     map[string]interface{} `json:"properties,omitempty"`
}

// NewRunMetadata creates a new run metadata instance for a workspace.
func NewRunMetadata(workspacePath string, specVersion string) *RunMetadata {
	absPath, _ := filepath.Abs(workspacePath)

	return &RunMetadata{
		Timestamp:     time.Now().UTC().Format(time.RFC3339),
		WorkspacePath: absPath,
		SpecVersion:   specVersion,
	}
}

// SetDuration sets the run duration in milliseconds.
func (m *RunMetadata) SetDuration(duration time.Duration) {
	m.DurationMs = duration.Milliseconds()
}

// SetResolutionCounts sets the resolved/failed dependency counts observed
// across every query in the run.
func (m *RunMetadata) SetResolutionCounts(resolved, failed int) {
	m.ResolvedCount = resolved
	m.FailedCount = failed
}

// SetCacheHitCount sets the number of artifact fetches served from cache.
func (m *RunMetadata) SetCacheHitCount(count int) {
	m.CacheHitCount = count
}

// SetQueryCount sets the number of top-level queries evaluated.
func (m *RunMetadata) SetQueryCount(count int) {
	m.QueryCount = count
}

// SetOffline records whether the run executed with --offline.
func (m *RunMetadata) SetOffline(offline bool) {
	m.Offline = offline
}

// SetProperties sets custom properties from workspace configuration.
func (m *RunMetadata) SetProperties(properties map[string]interface{}) {
	if len(properties) > 0 {
		m.Properties = properties
	}
}

// SetFormat sets the output format type.
func (m *RunMetadata) SetFormat(format string) {
	m.Format = format
}
