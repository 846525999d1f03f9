package metrics

import (
	"os"
	"sync"
	"sync/atomic"
	"time"

	"media-catalog/internal/logging"
)

// StatsProvider reports the persistent store's current counts.
type StatsProvider interface {
	GetStats() Stats
}

// Stats holds the values refreshed on every collection cycle.
type Stats struct {
	CachedDirectories int
	TagOwners         int
	TaggedPaths       int
	OpenConnections   int
}

// Collector periodically refreshes gauges that are cheaper to poll than to
// maintain inline.
type Collector struct {
	statsProvider StatsProvider
	dbPath        string
	interval      time.Duration
	stopChan      chan struct{}
	done          chan struct{}
	startOnce     sync.Once
	stopOnce      sync.Once
	running       atomic.Bool
}

// NewCollector creates a new metrics collector. dbPath may be empty to skip
// database file size collection.
func NewCollector(provider StatsProvider, dbPath string, interval time.Duration) *Collector {
	return &Collector{
		statsProvider: provider,
		dbPath:        dbPath,
		interval:      interval,
		stopChan:      make(chan struct{}),
		done:          make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	c.startOnce.Do(func() {
		c.running.Store(true)
		go c.collectLoop()
	})
}

// Stop stops the collection loop and waits for it to exit. It is safe to
// call more than once or without a prior Start.
func (c *Collector) Stop() {
	c.stopOnce.Do(func() {
		close(c.stopChan)
		if c.running.Load() {
			<-c.done
		}
	})
}

func (c *Collector) collectLoop() {
	defer close(c.done)

	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	c.collectDBSize()

	if c.statsProvider == nil {
		return
	}

	stats := c.statsProvider.GetStats()
	CachedDirectories.Set(float64(stats.CachedDirectories))
	TagOwners.Set(float64(stats.TagOwners))
	TaggedPaths.Set(float64(stats.TaggedPaths))
	DBConnectionsOpen.Set(float64(stats.OpenConnections))

	logging.Debug("Metrics collected: cached_dirs=%d, owners=%d, tagged=%d",
		stats.CachedDirectories, stats.TagOwners, stats.TaggedPaths)
}

func (c *Collector) collectDBSize() {
	if c.dbPath == "" {
		return
	}
	for label, suffix := range map[string]string{"main": "", "wal": "-wal", "shm": "-shm"} {
		info, err := os.Stat(c.dbPath + suffix)
		if err != nil {
			DBSizeBytes.WithLabelValues(label).Set(0)
			continue
		}
		DBSizeBytes.WithLabelValues(label).Set(float64(info.Size()))
	}
}
