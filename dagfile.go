package vecash

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	mmap "github.com/edsrzf/mmap-go"
	"github.com/gofrs/flock"
)

// dagFileName returns the on-disk name for a dataset file of the given
// epoch/seed, e.g. "full-R23-0-1234abcd5678ef90": the format revision, the
// epoch, and the first 8 bytes of the seed in hex.
func dagFileName(epoch int, seed []byte) string {
	return fmt.Sprintf("full-R%d-%d-%x", revision, epoch, seed[:min(8, len(seed))])
}

// cacheFileName is the cache-directory analogue of dagFileName.
func cacheFileName(epoch int, seed []byte) string {
	return fmt.Sprintf("cache-R%d-%d-%x", revision, epoch, seed[:min(8, len(seed))])
}

// revision is the on-disk format revision, carried over from the upstream
// constant of the same name.
const revision = 23

// openDatasetFile opens or creates the dataset file at path, handling each of
// the cases a caller can find on disk: Absent (create and size it),
// PresentWithCorrectSize+Magic (attach as-is), PresentWithCorrectSizeButBadMagic
// (regenerate in place), and PresentWithWrongSize (force-recreate at the
// right size, then regenerate). It returns an open, correctly-sized file and
// whether the caller still needs to (re)compute the dataset body.
func openDatasetFile(path string, fullSize uint64) (f *os.File, needsGeneration bool, err error) {
	totalSize := int64(fullSize + dagMagicNumSize)

	info, statErr := os.Stat(path)
	switch {
	case errors.Is(statErr, os.ErrNotExist):
		f, err = os.Create(path)
		if err != nil {
			return nil, false, fmt.Errorf("creating dataset file: %w", err)
		}
		if err := f.Truncate(totalSize); err != nil {
			f.Close()
			return nil, false, fmt.Errorf("sizing dataset file: %w", err)
		}
		return f, true, nil

	case statErr != nil:
		return nil, false, fmt.Errorf("stat dataset file: %w", statErr)

	case info.Size() != totalSize:
		// PresentWithWrongSize: force-recreate at the correct size, then
		// regenerate as on a magic mismatch (the original implementation's
		// documented self-healing behavior).
		logSizeMismatch(path, totalSize, info.Size())
		f, err = os.OpenFile(path, os.O_RDWR|os.O_TRUNC, 0644)
		if err != nil {
			return nil, false, fmt.Errorf("opening dataset file: %w", err)
		}
		if err := f.Truncate(totalSize); err != nil {
			f.Close()
			return nil, false, fmt.Errorf("resizing dataset file: %w", err)
		}
		return f, true, nil

	default:
		f, err = os.OpenFile(path, os.O_RDWR, 0644)
		if err != nil {
			return nil, false, fmt.Errorf("opening dataset file: %w", err)
		}
		var magic [dagMagicNumSize]byte
		if _, err := io.ReadFull(io.NewSectionReader(f, 0, dagMagicNumSize), magic[:]); err != nil {
			f.Close()
			return nil, false, fmt.Errorf("reading dataset magic: %w", err)
		}
		if binary.LittleEndian.Uint64(magic[:]) == dagMagicNum {
			return f, false, nil // MEMO_MATCH
		}
		logMagicMismatch(path)
		return f, true, nil // MEMO_MISMATCH
	}
}

// mapDataset memory-maps the first fullSize+dagMagicNumSize bytes of f and
// returns both the raw mapping and the node-array view past the magic
// prefix.
func mapDataset(f *os.File, fullSize uint64) (region mmap.MMap, data []byte, err error) {
	region, err = mmap.MapRegion(f, int(fullSize+dagMagicNumSize), mmap.RDWR, 0, 0)
	if err != nil {
		return nil, nil, fmt.Errorf("mmap dataset file: %w", err)
	}
	return region, region[dagMagicNumSize:], nil
}

// writeDAGMagic seeks f to its start, writes the magic sentinel, and flushes
// it durably. It must only be called once every dataset node write is
// durable in the mapping, since a reader treats the magic's presence as proof
// the body is complete.
func writeDAGMagic(f *os.File, region mmap.MMap) error {
	if err := region.Flush(); err != nil {
		return fmt.Errorf("flushing dataset body: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return fmt.Errorf("seeking to dataset start: %w", err)
	}
	var magic [dagMagicNumSize]byte
	binary.LittleEndian.PutUint64(magic[:], dagMagicNum)
	if _, err := f.Write(magic[:]); err != nil {
		return fmt.Errorf("writing dataset magic: %w", err)
	}
	return f.Sync()
}

// lockPathFor returns the flock guard path for a dataset/cache file: two
// local goroutines (or processes, best-effort) racing to build the same file
// serialize on this lock rather than truncating it twice. Concurrent
// cross-process generation of the *same* file beyond that best-effort guard
// remains the caller's responsibility.
func lockPathFor(path string) string { return path + ".lock" }

func withFileLock(path string, fn func() error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating directory: %w", err)
	}
	fl := flock.New(lockPathFor(path))
	if err := fl.Lock(); err != nil {
		return fmt.Errorf("locking %s: %w", path, err)
	}
	defer fl.Unlock()
	return fn()
}
