// -----------------------------------------------------------------------
// Application wiring - builds the extraction and optimization stack
// -----------------------------------------------------------------------

package app

import (
	"fmt"
	"time"

	"github.com/ternarybob/arbor"
	"github.com/ternarybob/merx/internal/common"
	"github.com/ternarybob/merx/internal/extractors"
	"github.com/ternarybob/merx/internal/interfaces"
	"github.com/ternarybob/merx/internal/models"
	"github.com/ternarybob/merx/internal/pipeline"
	"github.com/ternarybob/merx/internal/services/cache"
	"github.com/ternarybob/merx/internal/services/llm"
	"github.com/ternarybob/merx/internal/services/optimizer"
	"github.com/ternarybob/merx/internal/services/tasks"
	badgerstore "github.com/ternarybob/merx/internal/storage/badger"
)

// App holds all application components and dependencies. The cache is
// an explicit object injected at construction: created at process
// start, read and written during operation, no teardown beyond Close.
type App struct {
	Config *common.Config
	Logger arbor.ILogger

	DB           *badgerstore.BadgerDB
	CacheStorage interfaces.CacheStorage
	TaskCache    *cache.Service
	Provider     interfaces.CompletionProvider
	Runner       *tasks.Runner
	Pipeline     *pipeline.Pipeline
	Optimizer    *optimizer.Service
}

// Options controls optional wiring.
type Options struct {
	// WithoutStorage skips the durable cache tier; the in-memory tier
	// still operates.
	WithoutStorage bool
}

// New wires the application: storage, cache, provider, task runner,
// extraction pipeline, optimizer.
func New(config *common.Config, logger arbor.ILogger, opts Options) (*App, error) {
	a := &App{
		Config: config,
		Logger: logger,
	}

	if !opts.WithoutStorage {
		db, err := badgerstore.NewBadgerDB(logger, &config.Storage.Badger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		a.DB = db
		a.CacheStorage = badgerstore.NewCacheStorage(db, logger)
	}

	ttls := map[models.TaskKind]time.Duration{
		models.TaskLongTail: common.ParseTTL(config.Cache.LongTailTTL, models.DefaultLongTailTTL),
		models.TaskMeta:     common.ParseTTL(config.Cache.MetaTTL, models.DefaultMetaTTL),
		models.TaskBullets:  common.ParseTTL(config.Cache.BulletsTTL, models.DefaultBulletsTTL),
		models.TaskGaps:     common.ParseTTL(config.Cache.GapsTTL, models.DefaultGapsTTL),
	}
	a.TaskCache = cache.NewService(a.CacheStorage, ttls, logger)

	a.Provider = llm.NewFactory(config, logger)

	var taskCache interfaces.TaskCache
	if config.Cache.Enabled {
		taskCache = a.TaskCache
	}
	a.Runner = tasks.NewRunner(a.Provider, taskCache, config.Tasks.Offline, logger)
	a.Optimizer = optimizer.NewService(a.Runner, logger)

	selectors, err := loadSelectors(config, logger)
	if err != nil {
		return nil, err
	}

	a.Pipeline = pipeline.New(pipeline.Options{
		ExtractorTimeout:  config.Pipeline.ExtractorTimeoutDuration(),
		MinConfidence:     config.Pipeline.MinConfidence,
		StopAfterFirstHit: config.Pipeline.StopAfterFirstHit,
		MaxExtractors:     config.Pipeline.MaxExtractors,
		KeepResults:       config.Pipeline.KeepResults,
	}, logger)
	a.Pipeline.Register(extractors.NewJSONLDExtractor(logger))
	a.Pipeline.Register(extractors.NewMicrodataExtractor(logger))
	a.Pipeline.Register(extractors.NewOpenGraphExtractor(logger))
	a.Pipeline.Register(extractors.NewGenericExtractor(selectors, logger))

	logger.Debug().
		Int("extractors", len(a.Pipeline.Extractors())).
		Bool("cache_enabled", config.Cache.Enabled).
		Bool("offline", config.Tasks.Offline).
		Msg("Application wiring completed")

	return a, nil
}

func loadSelectors(config *common.Config, logger arbor.ILogger) (*extractors.SelectorTable, error) {
	if config.Pipeline.SelectorsFile == "" {
		return nil, nil
	}
	table, err := extractors.LoadSelectorTable(config.Pipeline.SelectorsFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load selector overrides: %w", err)
	}
	logger.Debug().Str("file", config.Pipeline.SelectorsFile).Msg("Loaded selector overrides")
	return table, nil
}

// Close releases provider clients and storage.
func (a *App) Close() error {
	if a.Provider != nil {
		if err := a.Provider.Close(); err != nil {
			a.Logger.Warn().Err(err).Msg("Failed to close provider")
		}
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
