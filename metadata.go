package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// CacheMetadata describes the whole current tile snapshot, not a per-tile
// record. At most one instance exists, fully replaced on every successful
// batch. DownloadedAt is unix milliseconds.
type CacheMetadata struct {
	Center       GeoPoint   `json:"center"`
	Bounds       *MapBounds `json:"bounds,omitempty"`
	DownloadedAt int64      `json:"downloadedAt"`
	ZoomLevels   []int      `json:"zoomLevels"`
}

// DownloadedTime returns DownloadedAt as a time.Time.
func (m *CacheMetadata) DownloadedTime() time.Time {
	return time.UnixMilli(m.DownloadedAt)
}

// MetadataStore 缓存元数据, single JSON slot on disk with full-overwrite
// semantics. No versioning, no merge.
type MetadataStore struct {
	path string
}

// NewMetadataStore creates a ledger persisted at path.
func NewMetadataStore(path string) *MetadataStore {
	return &MetadataStore{path: path}
}

// Read returns the current record, or ok=false when there is none. A
// malformed record reads as absent so a corrupt cache forces a re-download
// instead of being trusted.
func (m *MetadataStore) Read() (*CacheMetadata, bool) {
	data, err := os.ReadFile(m.path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warnf("read cache metadata %s error ~ %s", m.path, err)
		}
		return nil, false
	}
	var md CacheMetadata
	if err := json.Unmarshal(data, &md); err != nil {
		log.Warnf("cache metadata %s is malformed, treating as absent ~ %s", m.path, err)
		return nil, false
	}
	return &md, true
}

// Write overwrites the ledger unconditionally.
func (m *MetadataStore) Write(md CacheMetadata) error {
	if err := os.MkdirAll(filepath.Dir(m.path), os.ModePerm); err != nil {
		return fmt.Errorf("create metadata dir: %w", err)
	}
	data, err := json.Marshal(md)
	if err != nil {
		return fmt.Errorf("marshal cache metadata: %w", err)
	}
	if err := os.WriteFile(m.path, data, os.ModePerm); err != nil {
		return fmt.Errorf("write cache metadata: %w", err)
	}
	return nil
}

// Clear removes the ledger, best effort.
func (m *MetadataStore) Clear() {
	if err := os.Remove(m.path); err != nil && !os.IsNotExist(err) {
		log.Errorf("clear cache metadata %s error ~ %s", m.path, err)
	}
}
