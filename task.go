package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/paulmach/orb/maptile"
	"github.com/teris-io/shortid"
	pb "gopkg.in/cheggaaa/pb.v1"
)

// ErrDownloadInFlight 已有下载任务在执行. A second caller while a batch is
// running is dropped, not queued.
var ErrDownloadInFlight = errors.New("a tile download batch is already running")

// Downloader states. The explicit token replaces a module-level busy flag so
// single-flight is enforced on the instance, atomically.
const (
	stateIdle int32 = iota
	stateRunning
)

// DownloaderConfig 下载参数
type DownloaderConfig struct {
	Zooms       []int
	TileTimeout time.Duration
	TimeDelay   time.Duration
	MergeBounds bool
	Progress    bool
}

// Outcome is the human-readable result of a batch.
type Outcome struct {
	Message   string
	NewTiles  int
	Refreshed bool
}

// Downloader 下载任务. Runs at most one batch at a time: enumerates the tile
// rectangle per zoom level, fetches what the store is missing, then replaces
// the ledger. A single tile failure aborts the whole batch before the ledger
// is touched.
type Downloader struct {
	provider *TileProvider
	store    *TileStore
	meta     *MetadataStore
	policy   *RefreshPolicy
	cfg      DownloaderConfig

	client *http.Client
	state  atomic.Int32
	now    func() time.Time
}

// NewDownloader 创建下载任务
func NewDownloader(provider *TileProvider, store *TileStore, meta *MetadataStore, policy *RefreshPolicy, cfg DownloaderConfig) *Downloader {
	if len(cfg.Zooms) == 0 {
		cfg.Zooms = []int{13, 14, 15}
	}
	if cfg.TileTimeout <= 0 {
		cfg.TileTimeout = 20 * time.Second
	}
	return &Downloader{
		provider: provider,
		store:    store,
		meta:     meta,
		policy:   policy,
		cfg:      cfg,
		client:   &http.Client{Timeout: cfg.TileTimeout},
		now:      time.Now,
	}
}

// tileRange computes the inclusive tile index rectangle covering bounds at
// one zoom level. Min/max are taken per axis from all four corners so boxes
// that do not align with the tile grid are still covered.
func tileRange(bounds MapBounds, zoom int) (xStart, xEnd, yStart, yEnd int) {
	xStart = min(LonToTileX(bounds.SouthWest.Longitude, zoom), LonToTileX(bounds.NorthEast.Longitude, zoom))
	xEnd = max(LonToTileX(bounds.SouthWest.Longitude, zoom), LonToTileX(bounds.NorthEast.Longitude, zoom))
	yStart = min(LatToTileY(bounds.NorthEast.Latitude, zoom), LatToTileY(bounds.SouthWest.Latitude, zoom))
	yEnd = max(LatToTileY(bounds.NorthEast.Latitude, zoom), LatToTileY(bounds.SouthWest.Latitude, zoom))
	return
}

// countTiles totals the in-range tiles of every configured zoom, for the
// progress bar.
func (d *Downloader) countTiles(bounds MapBounds) int64 {
	var total int64
	for _, zoom := range d.cfg.Zooms {
		maxIndex := int(math.Pow(2, float64(zoom))) - 1
		xStart, xEnd, yStart, yEnd := tileRange(bounds, zoom)
		for x := xStart; x <= xEnd; x++ {
			for y := yStart; y <= yEnd; y++ {
				if x < 0 || y < 0 || x > maxIndex || y > maxIndex {
					continue
				}
				total++
			}
		}
	}
	return total
}

// DownloadAroundPoint builds a bounds of areaSqKm around p and downloads it.
func (d *Downloader) DownloadAroundPoint(ctx context.Context, p GeoPoint, areaSqKm float64, force bool) (*Outcome, error) {
	return d.DownloadBounds(ctx, BoundsAroundPoint(p, areaSqKm), force)
}

// DownloadBounds fetches every missing tile covering bounds across the
// configured zoom levels, then replaces the cache metadata. With force the
// store and ledger are cleared first so no stale tiles linger under a
// changed area.
func (d *Downloader) DownloadBounds(ctx context.Context, bounds MapBounds, force bool) (*Outcome, error) {
	if !d.state.CompareAndSwap(stateIdle, stateRunning) {
		return nil, ErrDownloadInFlight
	}
	defer d.state.Store(stateIdle)

	if !d.provider.Configured() {
		return nil, ErrProviderUnconfigured
	}

	if !force {
		if !d.policy.ShouldRefresh(RefreshTarget{Bounds: &bounds}) {
			return &Outcome{Message: "offline tiles already up to date"}, nil
		}
	} else {
		d.store.Clear()
		d.meta.Clear()
	}

	id, _ := shortid.Generate()
	start := d.now()
	normalized := bounds.Normalize()
	total := d.countTiles(normalized)
	log.Infof("batch %s: %s, %d tiles across zooms %v", id, d.provider.Name, total, d.cfg.Zooms)

	var bar *pb.ProgressBar
	if d.cfg.Progress {
		bar = pb.New64(total).Prefix(fmt.Sprintf("Batch %s : ", id))
		bar.SetRefreshRate(time.Second)
		bar.Start()
	}

	downloaded, err := d.fetchAll(ctx, normalized, bar)
	if bar != nil {
		bar.Finish()
	}
	if err != nil {
		return nil, fmt.Errorf("batch %s aborted: %w", id, err)
	}

	md := CacheMetadata{
		Center:       normalized.Center(),
		Bounds:       &normalized,
		DownloadedAt: d.now().UnixMilli(),
		ZoomLevels:   d.cfg.Zooms,
	}
	if d.cfg.MergeBounds {
		if prev, ok := d.meta.Read(); ok && prev.Bounds != nil {
			merged := normalized.Union(*prev.Bounds)
			md.Bounds = &merged
			md.Center = merged.Center()
		}
	}
	if err := d.meta.Write(md); err != nil {
		return nil, fmt.Errorf("batch %s aborted: %w", id, err)
	}

	log.Infof("batch %s: %d new tiles, %.3fs", id, downloaded, d.now().Sub(start).Seconds())

	outcome := &Outcome{NewTiles: downloaded, Refreshed: true}
	if downloaded > 0 {
		outcome.Message = fmt.Sprintf("offline map saved (%d new tiles)", downloaded)
	} else {
		outcome.Message = "offline tiles already up to date"
	}
	return outcome, nil
}

// fetchAll walks the tile rectangle of every zoom level sequentially,
// skipping tiles the store already holds. The first fetch or write failure
// aborts the loop.
func (d *Downloader) fetchAll(ctx context.Context, bounds MapBounds, bar *pb.ProgressBar) (int, error) {
	downloaded := 0
	for _, zoom := range d.cfg.Zooms {
		maxIndex := int(math.Pow(2, float64(zoom))) - 1
		xStart, xEnd, yStart, yEnd := tileRange(bounds, zoom)
		for x := xStart; x <= xEnd; x++ {
			for y := yStart; y <= yEnd; y++ {
				if x < 0 || y < 0 || x > maxIndex || y > maxIndex {
					continue
				}
				tile := maptile.Tile{X: uint32(x), Y: uint32(y), Z: maptile.Zoom(zoom)}
				if bar != nil {
					bar.Increment()
				}
				if d.store.Exists(tile) {
					continue
				}
				if d.cfg.TimeDelay > 0 {
					time.Sleep(d.cfg.TimeDelay)
				}
				fetchStart := d.now()
				body, err := d.provider.Fetch(ctx, d.client, tile)
				if err != nil {
					return downloaded, err
				}
				if _, err := d.store.Put(tile, body); err != nil {
					return downloaded, err
				}
				downloaded++
				log.Debugf("tile(z:%d, x:%d, y:%d), %dms, %.2f kb ...",
					zoom, x, y, d.now().Sub(fetchStart).Milliseconds(), float32(len(body))/1024.0)
			}
		}
	}
	return downloaded, nil
}
