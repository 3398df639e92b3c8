package vecash

import (
	"fmt"
	"os"
	"path/filepath"

	mmap "github.com/edsrzf/mmap-go"
)

// Full owns a memory-mapped DAG (the materialized mining dataset) and the
// open file backing it. Once constructed, the mapped region is read-only in
// practice (Compute never writes to it) and may be shared by multiple
// concurrent callers of Compute.
type Full struct {
	blockNumber uint64
	fileSize    uint64
	file        *os.File
	region      mmap.MMap
	data        []byte
}

// NewFull materializes (or attaches to) the DAG for the epoch light was built
// for, writing it under dir. light's cache is read during construction only;
// Full keeps no reference to light once this call returns, so the two can be
// closed independently of each other. progress, if non-nil, is called with a
// 0-100 percentage roughly every 1% of the work; returning false aborts with
// ErrCanceled.
func NewFull(light *Light, dir string, progress func(percent int) bool) (*Full, error) {
	return newFullAt(dir, light.blockNumber, datasetSize(light.epoch), light.cache, progress)
}

// newTestFull is like NewFull but materializes a testDatasetSize dataset,
// exercising the identical generation/mmap/magic-number code path.
func newTestFull(light *Light, dir string, progress func(percent int) bool) (*Full, error) {
	return newFullAt(dir, light.blockNumber, testDatasetSize, light.cache, progress)
}

func newFullAt(dir string, blockNumber uint64, fullSize uint64, cache []byte, progress func(percent int) bool) (*Full, error) {
	if fullSize%(4*mixWords) != 0 || fullSize%hashBytes != 0 {
		return nil, ErrInvalidDatasetSize
	}
	seed := seedHash(blockNumber)
	path := filepath.Join(dir, dagFileName(int(blockNumber/epochLength), seed))

	var (
		full *Full
		err  error
	)
	lockErr := withFileLock(path, func() error {
		full, err = buildOrAttach(path, blockNumber, fullSize, cache, progress)
		return nil
	})
	if lockErr != nil {
		return nil, lockErr
	}
	return full, err
}

func buildOrAttach(path string, blockNumber, fullSize uint64, cache []byte, progress func(percent int) bool) (*Full, error) {
	f, needsGeneration, err := openDatasetFile(path, fullSize)
	if err != nil {
		return nil, err
	}
	region, data, err := mapDataset(f, fullSize)
	if err != nil {
		f.Close()
		return nil, err
	}
	if needsGeneration {
		logGenerateStart(blockNumber, fullSize)
		if err := generateDataset(data, cache, progress); err != nil {
			region.Unmap()
			f.Close()
			return nil, err
		}
		if err := writeDAGMagic(f, region); err != nil {
			region.Unmap()
			f.Close()
			return nil, err
		}
		logGenerateDone(blockNumber, fullSize)
	}
	return &Full{
		blockNumber: blockNumber,
		fileSize:    fullSize,
		file:        f,
		region:      region,
		data:        data,
	}, nil
}

// Close unmaps the dataset and closes its backing file. It is safe to call
// more than once; only the first call releases anything.
func (full *Full) Close() error {
	region, file := full.region, full.file
	full.region, full.file = nil, nil
	if region == nil && file == nil {
		return nil
	}
	if region != nil {
		if err := region.Unmap(); err != nil {
			if file != nil {
				file.Close()
			}
			return fmt.Errorf("unmapping dataset: %w", err)
		}
	}
	if file == nil {
		return nil
	}
	return file.Close()
}

// Compute runs the mix engine directly against the materialized dataset.
func (full *Full) Compute(headerHash H256, nonce uint64) (ReturnValue, error) {
	mixDigest, result := hashimotoFull(full.data, headerHash[:], nonce)
	var rv ReturnValue
	copy(rv.MixHash[:], mixDigest)
	copy(rv.Result[:], result)
	rv.Success = true
	return rv, nil
}

// Dataset returns a read-only view of the DAG body (excluding the magic
// prefix).
func (full *Full) Dataset() []byte { return full.data }

// DatasetSize returns the size in bytes of the DAG body (excluding the magic
// prefix).
func (full *Full) DatasetSize() uint64 { return full.fileSize }
