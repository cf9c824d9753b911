package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/paulmach/orb"
)

// SurveyPoint 采集点, one captured GPS fix.
type SurveyPoint struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timestamp int64   `json:"timestamp"`
	ID        string  `json:"id"`
}

// SurveyPolygon 采集区块, an ordered run of captured points.
type SurveyPolygon struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Coordinates []SurveyPoint `json:"coordinates"`
	CreatedAt   int64         `json:"createdAt"`
}

// Ring returns the polygon outline as a closed orb ring.
func (p SurveyPolygon) Ring() orb.Ring {
	ring := make(orb.Ring, 0, len(p.Coordinates)+1)
	for _, c := range p.Coordinates {
		ring = append(ring, orb.Point{c.Longitude, c.Latitude})
	}
	if len(ring) > 0 && ring[0] != ring[len(ring)-1] {
		ring = append(ring, ring[0])
	}
	return ring
}

// Bounds returns the normalized bounding box of the polygon, handy as a
// prefetch target for the area just surveyed.
func (p SurveyPolygon) Bounds() MapBounds {
	return boundsFromOrb(p.Ring().Bound()).Normalize()
}

// SurveyStore persists captured polygons as a single JSON file of the full
// list, same overwrite style as the cache ledger.
type SurveyStore struct {
	path string
}

// NewSurveyStore creates a store persisted at path.
func NewSurveyStore(path string) *SurveyStore {
	return &SurveyStore{path: path}
}

// Load returns every saved polygon. A missing file is an empty list.
func (s *SurveyStore) Load() ([]SurveyPolygon, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read polygon file: %w", err)
	}
	var polygons []SurveyPolygon
	if err := json.Unmarshal(data, &polygons); err != nil {
		return nil, fmt.Errorf("unmarshal polygon file: %w", err)
	}
	return polygons, nil
}

// Save appends a polygon and rewrites the file.
func (s *SurveyStore) Save(p SurveyPolygon) error {
	polygons, err := s.Load()
	if err != nil {
		return err
	}
	polygons = append(polygons, p)

	if err := os.MkdirAll(filepath.Dir(s.path), os.ModePerm); err != nil {
		return fmt.Errorf("create polygon dir: %w", err)
	}
	data, err := json.Marshal(polygons)
	if err != nil {
		return fmt.Errorf("marshal polygons: %w", err)
	}
	if err := os.WriteFile(s.path, data, os.ModePerm); err != nil {
		return fmt.Errorf("write polygon file: %w", err)
	}
	return nil
}

// GenerateKML renders one polygon as a KML document with a closed outer
// ring.
func GenerateKML(p SurveyPolygon) string {
	coords := make([]string, 0, len(p.Coordinates)+1)
	for _, c := range p.Coordinates {
		coords = append(coords, fmt.Sprintf("%g,%g,0", c.Longitude, c.Latitude))
	}
	if len(p.Coordinates) > 0 {
		first := p.Coordinates[0]
		coords = append(coords, fmt.Sprintf("%g,%g,0", first.Longitude, first.Latitude))
	}

	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<kml xmlns="http://www.opengis.net/kml/2.2">
  <Document>
    <name>%s</name>
    <description>Polygon created at %s</description>
    <Placemark>
      <name>%s</name>
      <description>Polygon with %d points</description>
      <Polygon>
        <outerBoundaryIs>
          <LinearRing>
            <coordinates>%s</coordinates>
          </LinearRing>
        </outerBoundaryIs>
      </Polygon>
    </Placemark>
  </Document>
</kml>`, p.Name, time.UnixMilli(p.CreatedAt).Format("2006-01-02"), p.Name, len(p.Coordinates), strings.Join(coords, " "))
}

// ExportKML writes the KML rendition of a polygon next to the survey file.
func ExportKML(p SurveyPolygon, path string) error {
	if err := os.WriteFile(path, []byte(GenerateKML(p)), os.ModePerm); err != nil {
		return fmt.Errorf("write kml file: %w", err)
	}
	return nil
}
