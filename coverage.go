package main

// CoverageChecker answers "is the cache usable right now" with a single
// representative tile probe: the tile containing the reference center at the
// first cached zoom level. Deliberately approximate, it runs on every
// viewport change and must stay O(1). It only reads the tile store and may
// run while a download batch is in flight.
type CoverageChecker struct {
	store *TileStore
	meta  *MetadataStore
	zooms []int
}

// NewCoverageChecker creates a checker over the given store and ledger.
func NewCoverageChecker(store *TileStore, meta *MetadataStore, zooms []int) *CoverageChecker {
	return &CoverageChecker{store: store, meta: meta, zooms: zooms}
}

// HasOfflineCoverage reports whether the probe tile for the reference area
// exists on disk. The reference center falls back from the explicit target
// to the cached bounds center, then to the cached center.
func (c *CoverageChecker) HasOfflineCoverage(target RefreshTarget) bool {
	md, ok := c.meta.Read()
	if !ok {
		return false
	}

	var center GeoPoint
	switch {
	case target.Bounds != nil:
		center = target.Bounds.Normalize().Center()
	case target.Point != nil:
		center = *target.Point
	case md.Bounds != nil:
		center = md.Bounds.Center()
	default:
		center = md.Center
	}

	zoom := 0
	switch {
	case len(md.ZoomLevels) > 0:
		zoom = md.ZoomLevels[0]
	case len(c.zooms) > 0:
		zoom = c.zooms[0]
	}

	return c.store.Exists(TileForPoint(center, zoom))
}
