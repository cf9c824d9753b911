package main

import "time"

// RefreshTarget is the area the caller currently cares about, either an
// explicit viewport bounds or a position.
type RefreshTarget struct {
	Bounds *MapBounds
	Point  *GeoPoint
}

// RefreshPolicy 刷新策略. Decides whether the cached snapshot still covers
// the area of interest. The bounds and the distance/time checks are
// independent triggers, any one of them alone forces a refresh.
type RefreshPolicy struct {
	DistanceMeters float64
	MaxAge         time.Duration

	meta *MetadataStore
	now  func() time.Time
}

// NewRefreshPolicy creates a policy reading the given ledger.
func NewRefreshPolicy(meta *MetadataStore, distanceMeters float64, maxAge time.Duration) *RefreshPolicy {
	return &RefreshPolicy{
		DistanceMeters: distanceMeters,
		MaxAge:         maxAge,
		meta:           meta,
		now:            time.Now,
	}
}

// ShouldRefresh reports whether the cache must be rebuilt for the target.
func (p *RefreshPolicy) ShouldRefresh(target RefreshTarget) bool {
	md, ok := p.meta.Read()
	if !ok {
		return true
	}

	if target.Bounds != nil {
		if md.Bounds == nil {
			// 旧版快照只有中心点
			log.Debugf("cached snapshot has no bounds, refresh required")
			return true
		}
		if !md.Bounds.Contains(*target.Bounds) {
			log.Debugf("target bounds not contained in cached bounds, refresh required")
			return true
		}
	}

	if target.Point != nil {
		distance := Haversine(*target.Point, md.Center)
		elapsed := p.now().Sub(md.DownloadedTime())
		if distance > p.DistanceMeters || elapsed > p.MaxAge {
			log.Debugf("moved %.0fm, elapsed %s, refresh required", distance, elapsed)
			return true
		}
	}

	return false
}
