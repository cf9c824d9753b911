package main

import (
	"os"
	"path/filepath"
	"testing"
)

const testFeatureCollection = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {},
      "geometry": {
        "type": "Polygon",
        "coordinates": [[[-47.90, -15.80], [-47.80, -15.80], [-47.80, -15.70], [-47.90, -15.70], [-47.90, -15.80]]]
      }
    },
    {
      "type": "Feature",
      "properties": {},
      "geometry": {
        "type": "Point",
        "coordinates": [-47.95, -15.75]
      }
    }
  ]
}`

func TestBoundsFromGeoJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "area.geojson")
	if err := os.WriteFile(path, []byte(testFeatureCollection), os.ModePerm); err != nil {
		t.Fatal(err)
	}

	bounds, err := BoundsFromGeoJSON(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// union of the polygon and the point west of it
	if bounds.SouthWest.Longitude != -47.95 || bounds.NorthEast.Longitude != -47.80 {
		t.Errorf("unexpected longitude range %+v", bounds)
	}
	if bounds.SouthWest.Latitude != -15.80 || bounds.NorthEast.Latitude != -15.70 {
		t.Errorf("unexpected latitude range %+v", bounds)
	}
}

func TestBoundsFromGeoJSONMissingFile(t *testing.T) {
	if _, err := BoundsFromGeoJSON(filepath.Join(t.TempDir(), "nope.geojson")); err == nil {
		t.Error("missing file must be an error")
	}
}

func TestBoundsFromGeoJSONEmptyCollection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.geojson")
	if err := os.WriteFile(path, []byte(`{"type":"FeatureCollection","features":[]}`), os.ModePerm); err != nil {
		t.Fatal(err)
	}
	if _, err := BoundsFromGeoJSON(path); err == nil {
		t.Error("empty collection must be an error")
	}
}
