package main

import (
	"flag"
	"fmt"
	"math"
	"os"
)

var (
	hf           bool
	configPath   string
	logLevel     string
	areaPath     string
	centerLat    float64
	centerLon    float64
	forceRefresh bool
	coverageOnly bool
)

func InitFlag() {
	flag.BoolVar(&hf, "h", false, "this help")
	flag.StringVar(&configPath, "c", "./conf/conf.toml", "set config `file`")
	flag.StringVar(&logLevel, "l", "info", "set log level (default: info)")
	flag.StringVar(&areaPath, "area", "", "geojson `file` whose union bound is the prefetch area")
	flag.Float64Var(&centerLat, "lat", math.NaN(), "latitude of the prefetch center")
	flag.Float64Var(&centerLon, "lon", math.NaN(), "longitude of the prefetch center")
	flag.BoolVar(&forceRefresh, "force", false, "clear cached tiles and metadata before downloading")
	flag.BoolVar(&coverageOnly, "coverage", false, "report offline coverage and the tile path template, then exit")
	flag.Usage = usage
	flag.Parse()

	if hf {
		flag.Usage()
		os.Exit(0)
	}
}

func usage() {
	fmt.Fprintf(os.Stderr, `offtiler version: offtiler/v0.1.0
Usage: offtiler [-h] [-c filename] [-l logLevel] [-area file | -lat n -lon n] [-force] [-coverage]
`)
	flag.PrintDefaults()
}
