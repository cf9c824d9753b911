package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// loadCollection reads a GeoJSON feature collection from disk.
func loadCollection(path string) (orb.Collection, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read geojson file: %w", err)
	}

	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("unmarshal feature collection: %w", err)
	}

	var collection orb.Collection
	for _, f := range fc.Features {
		collection = append(collection, f.Geometry)
	}
	return collection, nil
}

// BoundsFromGeoJSON resolves a prefetch target from a GeoJSON area file: the
// union bound of every feature geometry.
func BoundsFromGeoJSON(path string) (MapBounds, error) {
	collection, err := loadCollection(path)
	if err != nil {
		return MapBounds{}, err
	}
	if len(collection) == 0 {
		return MapBounds{}, errors.New("geojson area file contains no features")
	}

	bound := collection[0].Bound()
	for _, g := range collection[1:] {
		bound = bound.Union(g.Bound())
	}
	return boundsFromOrb(bound).Normalize(), nil
}
