package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestMetadataRoundTrip(t *testing.T) {
	meta := NewMetadataStore(filepath.Join(t.TempDir(), "metadata.json"))

	if _, ok := meta.Read(); ok {
		t.Fatal("fresh ledger must read as absent")
	}

	bounds := BoundsAroundPoint(GeoPoint{Latitude: -15.8, Longitude: -47.9}, 5).Normalize()
	md := CacheMetadata{
		Center:       bounds.Center(),
		Bounds:       &bounds,
		DownloadedAt: time.Now().UnixMilli(),
		ZoomLevels:   []int{13, 14, 15},
	}
	if err := meta.Write(md); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, ok := meta.Read()
	if !ok {
		t.Fatal("ledger must be present after write")
	}
	if got.Bounds == nil || *got.Bounds != bounds {
		t.Errorf("bounds not preserved: %+v", got.Bounds)
	}
	if got.Center != md.Center || got.DownloadedAt != md.DownloadedAt {
		t.Errorf("record not preserved: %+v", got)
	}
	if len(got.ZoomLevels) != 3 || got.ZoomLevels[0] != 13 {
		t.Errorf("zoom levels not preserved: %v", got.ZoomLevels)
	}
}

func TestMetadataOverwrite(t *testing.T) {
	meta := NewMetadataStore(filepath.Join(t.TempDir(), "metadata.json"))

	first := BoundsAroundPoint(GeoPoint{Latitude: -15.8, Longitude: -47.9}, 20).Normalize()
	second := BoundsAroundPoint(GeoPoint{Latitude: -15.8, Longitude: -47.9}, 5).Normalize()

	if err := meta.Write(CacheMetadata{Center: first.Center(), Bounds: &first}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := meta.Write(CacheMetadata{Center: second.Center(), Bounds: &second}); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, ok := meta.Read()
	if !ok {
		t.Fatal("ledger must be present")
	}
	// full replace: the narrower batch shrinks the recorded bounds
	if *got.Bounds != second {
		t.Errorf("ledger must hold the last batch bounds, got %+v", got.Bounds)
	}
}

func TestMetadataMalformedReadsAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metadata.json")
	if err := os.WriteFile(path, []byte("{not json"), os.ModePerm); err != nil {
		t.Fatal(err)
	}

	meta := NewMetadataStore(path)
	if _, ok := meta.Read(); ok {
		t.Error("malformed ledger must read as absent")
	}
}

func TestMetadataClear(t *testing.T) {
	meta := NewMetadataStore(filepath.Join(t.TempDir(), "metadata.json"))
	if err := meta.Write(CacheMetadata{Center: GeoPoint{1, 2}}); err != nil {
		t.Fatalf("write: %v", err)
	}
	meta.Clear()
	if _, ok := meta.Read(); ok {
		t.Error("ledger must be absent after clear")
	}
	// clearing twice stays silent
	meta.Clear()
}
