package badger

import (
	badgerdb "github.com/dgraph-io/badger/v4"
	"github.com/robfig/cron/v3"
	"github.com/ternarybob/arbor"
)

// maintenance runs scheduled Badger value-log garbage collection.
// Badger never reclaims value-log space on its own; without periodic GC
// the cache directory grows unbounded.
type maintenance struct {
	cron   *cron.Cron
	logger arbor.ILogger
}

func startMaintenance(db *BadgerDB, schedule string, logger arbor.ILogger) (*maintenance, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		runValueLogGC(db, logger)
	})
	if err != nil {
		return nil, err
	}
	c.Start()

	logger.Debug().Str("schedule", schedule).Msg("Badger value-log GC scheduled")
	return &maintenance{cron: c, logger: logger}, nil
}

func (m *maintenance) stop() {
	if m.cron != nil {
		m.cron.Stop()
	}
}

// runValueLogGC rewrites value-log files until Badger reports nothing
// left to reclaim.
func runValueLogGC(db *BadgerDB, logger arbor.ILogger) {
	rewritten := 0
	for {
		err := db.Store().Badger().RunValueLogGC(0.5)
		if err == badgerdb.ErrNoRewrite {
			break
		}
		if err != nil {
			logger.Warn().Err(err).Msg("Badger value-log GC failed")
			return
		}
		rewritten++
	}
	if rewritten > 0 {
		logger.Debug().Int("files_rewritten", rewritten).Msg("Badger value-log GC completed")
	}
}
