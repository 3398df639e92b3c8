package vecash

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/simplelru"
)

// Mode selects between production-sized and test-sized cache/dataset
// generation. ModeTest runs the identical algorithm over tiny buffers so
// test suites complete in milliseconds.
type Mode int

const (
	ModeNormal Mode = iota
	ModeTest
)

// Config configures an Engine's epoch-window cache/dataset management: where
// generated material is persisted, and how many epochs' worth are kept
// resident in memory versus merely on disk.
type Config struct {
	CacheDir       string
	CachesInMem    int
	CachesOnDisk   int
	DatasetDir     string
	DatasetsInMem  int
	DatasetsOnDisk int
	PowMode        Mode
}

func (c *Config) setDefaults() {
	if c.CachesInMem <= 0 {
		c.CachesInMem = 2
	}
	if c.DatasetsInMem <= 0 {
		c.DatasetsInMem = 1
	}
}

// cacheEntry lazily builds the Light cache for one epoch; the sync.Once
// ensures concurrent callers requesting the same never-yet-built epoch block
// on a single generation rather than racing to build it twice.
type cacheEntry struct {
	once  sync.Once
	epoch int
	light *Light
	err   error
}

// datasetEntry is the dataset-side counterpart of cacheEntry.
type datasetEntry struct {
	once  sync.Once
	epoch int
	full  *Full
	err   error
}

// Engine is the top-level entry point: it owns bounded LRUs of recently used
// caches and datasets, keyed by epoch, and resolves a block number to the
// right epoch's material on every Compute/Dataset call.
type Engine struct {
	config Config

	mu       sync.Mutex
	caches   *lru.LRU
	datasets *lru.LRU
	closed   bool
}

// New builds an Engine from config. Cache/dataset generation happens lazily,
// on first use of each epoch.
func New(config Config) *Engine {
	config.setDefaults()
	e := &Engine{config: config}
	e.caches, _ = lru.NewLRU(config.CachesInMem, e.onCacheEvicted)
	e.datasets, _ = lru.NewLRU(config.DatasetsInMem, e.onDatasetEvicted)
	return e
}

// NewTester returns an Engine running in ModeTest: cache/dataset sizes are
// shrunk to 1024 bytes each so the exact same generation and mix code runs
// without the real multi-gigabyte materialization cost.
func NewTester() *Engine {
	return New(Config{CachesInMem: 2, DatasetsInMem: 1, PowMode: ModeTest})
}

// onCacheEvicted drops the Engine's reference to an evicted cache without
// closing it, so a concurrent Compute that already fetched the same Light can
// still finish with it; the cache memory is reclaimed once no caller holds it.
func (e *Engine) onCacheEvicted(key, value interface{}) {
	entry, ok := value.(*cacheEntry)
	if !ok || entry.light == nil {
		return
	}
	logEvict("cache", entry.epoch)
}

func (e *Engine) onDatasetEvicted(key, value interface{}) {
	entry, ok := value.(*datasetEntry)
	if !ok || entry.full == nil {
		return
	}
	entry.full.Close()
	logEvict("dataset", entry.epoch)
}

// getCache returns the Light for the epoch containing blockNumber, building
// or loading it if this is the first request for that epoch.
func (e *Engine) getCache(blockNumber uint64) (*Light, int, error) {
	epoch, ok := epochOf(blockNumber)
	if !ok {
		return nil, 0, ErrOutOfRange
	}

	e.mu.Lock()
	v, found := e.caches.Get(epoch)
	if !found {
		v = &cacheEntry{epoch: epoch}
		e.caches.Add(epoch, v)
		e.sweepCacheFilesLocked(epoch)
	}
	e.mu.Unlock()

	entry := v.(*cacheEntry)
	entry.once.Do(func() {
		if e.config.PowMode == ModeTest {
			entry.light, entry.err = newTestLight(blockNumber)
			return
		}
		entry.light, entry.err = e.loadOrBuildCache(blockNumber, epoch)
	})
	return entry.light, epoch, entry.err
}

func (e *Engine) loadOrBuildCache(blockNumber uint64, epoch int) (*Light, error) {
	if e.config.CacheDir == "" {
		return NewLight(blockNumber)
	}
	seed := seedHash(blockNumber)
	path := filepath.Join(e.config.CacheDir, cacheFileName(epoch, seed))
	size := cacheSize(epoch)

	if data, err := os.ReadFile(path); err == nil && uint64(len(data)) == size {
		return &Light{blockNumber: blockNumber, epoch: epoch, cache: data}, nil
	}
	light, err := NewLight(blockNumber)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(e.config.CacheDir, 0755); err == nil {
		_ = os.WriteFile(path, light.cache, 0644)
	}
	return light, nil
}

// Dataset materializes (or attaches to) the DAG for the epoch containing
// blockNumber. progress, if non-nil, is invoked with a 0-100 percentage
// roughly every 1% of the work; it returns false to abort, yielding
// ErrCanceled.
func (e *Engine) Dataset(blockNumber uint64, progress func(percent int) bool) error {
	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return ErrClosed
	}
	light, epoch, err := e.getCache(blockNumber)
	if err != nil {
		return err
	}

	e.mu.Lock()
	v, found := e.datasets.Get(epoch)
	if !found {
		v = &datasetEntry{epoch: epoch}
		e.datasets.Add(epoch, v)
		e.sweepDatasetFilesLocked(epoch)
	}
	e.mu.Unlock()

	entry := v.(*datasetEntry)
	entry.once.Do(func() {
		if e.config.PowMode == ModeTest {
			entry.full, entry.err = newTestFull(light, e.config.DatasetDir, progress)
			return
		}
		entry.full, entry.err = NewFull(light, e.config.DatasetDir, progress)
	})
	return entry.err
}

// Compute resolves the epoch's material — the materialized dataset if
// Dataset has already been called for it, the verification cache otherwise —
// and runs the mix engine against it.
func (e *Engine) Compute(blockNumber uint64, headerHash H256, nonce uint64) (ReturnValue, error) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ReturnValue{}, ErrClosed
	}
	epoch, ok := epochOf(blockNumber)
	if !ok {
		e.mu.Unlock()
		return ReturnValue{}, ErrOutOfRange
	}
	dv, hasDataset := e.datasets.Get(epoch)
	e.mu.Unlock()

	if hasDataset {
		if entry := dv.(*datasetEntry); entry.full != nil {
			return entry.full.Compute(headerHash, nonce)
		}
	}

	light, _, err := e.getCache(blockNumber)
	if err != nil {
		return ReturnValue{}, err
	}
	size := datasetSize(epoch)
	if e.config.PowMode == ModeTest {
		size = testDatasetSize
	}
	return light.Compute(headerHash, nonce, size)
}

// Close releases every resident cache and dataset. Further calls to Compute
// or Dataset return ErrClosed.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return nil
	}
	e.closed = true
	// Purge invokes onEvict for every resident entry before dropping it, so
	// this alone closes every dataset and drops every cache still held by the
	// Engine.
	e.datasets.Purge()
	e.caches.Purge()
	return nil
}

// sweepCacheFilesLocked removes cache files for epochs further than
// CachesOnDisk away from currentEpoch. Must be called with e.mu held. A
// CachesOnDisk of zero disables sweeping.
func (e *Engine) sweepCacheFilesLocked(currentEpoch int) {
	sweepDir(e.config.CacheDir, "cache", "cache-R", e.config.CachesOnDisk, currentEpoch)
}

// sweepDatasetFilesLocked is the Dataset-side counterpart of
// sweepCacheFilesLocked.
func (e *Engine) sweepDatasetFilesLocked(currentEpoch int) {
	sweepDir(e.config.DatasetDir, "dataset", "full-R", e.config.DatasetsOnDisk, currentEpoch)
}

// sweepDir deletes files under dir matching "<prefix><revision>-<epoch>-..."
// whose epoch is more than window epochs away from currentEpoch. A window of
// zero disables sweeping entirely (treated as "keep everything").
func sweepDir(dir, kind, prefix string, window, currentEpoch int) {
	if dir == "" || window <= 0 {
		return
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return
	}
	wantPrefix := fmt.Sprintf("%s%d-", prefix, revision)
	for _, ent := range entries {
		if ent.IsDir() || !strings.HasPrefix(ent.Name(), wantPrefix) {
			continue
		}
		fields := strings.SplitN(strings.TrimPrefix(ent.Name(), wantPrefix), "-", 2)
		epoch, err := strconv.Atoi(fields[0])
		if err != nil {
			continue
		}
		delta := currentEpoch - epoch
		if delta < 0 {
			delta = -delta
		}
		if delta > window {
			path := filepath.Join(dir, ent.Name())
			logSweep(kind, epoch, path)
			os.Remove(path)
			os.Remove(lockPathFor(path))
		}
	}
}
