package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"
)

func main() {
	// 初始化控制台
	InitFlag()
	// 开始安全退出任务
	InitSafeExit()
	// 初始化配置
	InitConf(configPath)
	// 初始化日志
	InitLog()
	// 开始任务
	InitTask()
}

// InitTask wires the cache components from the configuration and runs the
// requested operation: a coverage report or a prefetch batch.
func InitTask() {
	start := time.Now()

	provider := NewTileProvider(conf.Provider.Name, conf.Provider.URL, conf.Provider.APIKey, conf.Provider.UserAgent)
	store := NewTileStore(conf.Cache.Directory)
	meta := NewMetadataStore(conf.Cache.MetadataFile)
	policy := NewRefreshPolicy(meta, conf.Refresh.DistanceMeters, time.Duration(conf.Refresh.MaxAgeHours)*time.Hour)
	checker := NewCoverageChecker(store, meta, conf.Cache.Zooms)
	downloader := NewDownloader(provider, store, meta, policy, DownloaderConfig{
		Zooms:       conf.Cache.Zooms,
		TileTimeout: time.Duration(conf.Task.TileTimeoutSeconds) * time.Second,
		TimeDelay:   time.Duration(conf.Task.TimedelayMs) * time.Millisecond,
		MergeBounds: conf.Refresh.MergeBounds,
		Progress:    conf.Output.OutputTerminal,
	})

	target, ok := resolveTarget()

	if coverageOnly {
		covered := checker.HasOfflineCoverage(target)
		fmt.Printf("offline coverage: %t\ntile path template: %s\n", covered, store.PathTemplate())
		return
	}

	if !ok {
		log.Fatal("no prefetch target, pass -area or -lat/-lon")
	}

	monitor := NewConnectivityMonitor(provider.ProbeURL(),
		time.Duration(conf.Network.PollSeconds)*time.Second,
		time.Duration(conf.Network.ProbeTimeoutSeconds)*time.Second)
	monitor.Start()
	SafeExitInst.Register(monitor.Stop)
	defer monitor.Stop()

	if monitor.Offline() && !forceRefresh {
		log.Warn("device looks offline, keeping the cached tiles as they are")
		return
	}

	outcome, err := downloader.DownloadBounds(context.Background(), *target.Bounds, forceRefresh)
	switch {
	case errors.Is(err, ErrDownloadInFlight):
		log.Debug("download already in flight, dropped")
		return
	case errors.Is(err, ErrProviderUnconfigured):
		log.Error(err)
		return
	case err != nil:
		log.Errorf("offline map download failed ~ %s", err)
		return
	}

	log.Info(outcome.Message)
	if checker.HasOfflineCoverage(target) {
		log.Infof("offline coverage confirmed, renderer template: %s", store.PathTemplate())
	}

	secs := time.Since(start).Seconds()
	log.Printf("\n%.3fs finished...", secs)
}

// resolveTarget picks the prefetch area: a GeoJSON area file wins, then a
// point with the configured default area around it.
func resolveTarget() (RefreshTarget, bool) {
	if areaPath != "" {
		bounds, err := BoundsFromGeoJSON(areaPath)
		if err != nil {
			log.Fatalf("unable to load area file: %v", err)
		}
		return RefreshTarget{Bounds: &bounds}, true
	}
	if !math.IsNaN(centerLat) && !math.IsNaN(centerLon) {
		point := GeoPoint{Latitude: centerLat, Longitude: centerLon}
		bounds := BoundsAroundPoint(point, conf.Cache.AreaSqKm)
		return RefreshTarget{Bounds: &bounds, Point: &point}, true
	}
	return RefreshTarget{}, false
}
