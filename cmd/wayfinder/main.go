package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/lintang-b-s/wayfinder/pkg"
	"github.com/lintang-b-s/wayfinder/pkg/http"
	"github.com/lintang-b-s/wayfinder/pkg/http/usecases"
	"github.com/lintang-b-s/wayfinder/pkg/logger"
	"github.com/lintang-b-s/wayfinder/pkg/planner"
	"github.com/lintang-b-s/wayfinder/pkg/spatialindex"
	"github.com/lintang-b-s/wayfinder/pkg/upstream"
	"github.com/lintang-b-s/wayfinder/pkg/util"
	"go.uber.org/zap"
)

var (
	useRateLimit  = flag.Bool("rate_limit", false, "rate limit the http api per client ip")
	cacheSnapshot = flag.String("cache_snapshot", "./data/place_cache.bz2", "place cache snapshot file path")
)

func main() {
	flag.Parse()
	logger, err := logger.New()
	if err != nil {
		panic(err)
	}

	if err := util.ReadConfig(); err != nil {
		logger.Info("no config file found, using defaults and environment", zap.Error(err))
	}

	cache := planner.NewPlaceCache()
	if err := cache.LoadFile(*cacheSnapshot); err != nil {
		if !os.IsNotExist(err) {
			logger.Warn("cannot load place cache snapshot", zap.Error(err))
		}
	} else {
		logger.Info("loaded place cache snapshot", zap.Int("places", cache.Len()))
	}

	recents := spatialindex.NewRtree()

	gateway := upstream.NewClient(logger)
	locator := upstream.NewLocator(logger)

	plannerService := usecases.NewPlannerService(logger, gateway, recents, cache, locator,
		pkg.SEARCH_QUIET_PERIOD_MS*time.Millisecond)

	api := http.NewServer(logger)

	ctx, cleanup, err := NewContext()
	if err != nil {
		panic(err)
	}
	api.Use(ctx, logger, *useRateLimit, plannerService)

	signal := http.GracefulShutdown()

	if err := cache.SaveFile(*cacheSnapshot); err != nil {
		logger.Warn("cannot save place cache snapshot", zap.Error(err))
	}

	logger.Info("Wayfinder Trip Planning Server Stopped", zap.String("signal", signal.String()))
	cleanup()
}

func NewContext() (context.Context, func(), error) {
	ctx, cancel := context.WithCancel(context.Background())
	cb := func() {
		cancel()
	}

	return ctx, cb, nil
}
