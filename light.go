package vecash

import "fmt"

// Light owns a verification cache for a single epoch and reconstructs
// dataset nodes from it on demand. Once built, a Light is immutable and safe
// for concurrent use by multiple callers of Compute.
type Light struct {
	blockNumber uint64
	epoch       int
	cache       []byte
}

// NewLight derives the epoch seed for blockNumber and builds the SeqMemoHash
// verification cache for it.
func NewLight(blockNumber uint64) (*Light, error) {
	epoch, ok := epochOf(blockNumber)
	if !ok {
		return nil, ErrOutOfRange
	}
	cache := make([]byte, cacheSize(epoch))
	if err := generateCache(cache, seedHash(blockNumber)); err != nil {
		return nil, err
	}
	return &Light{blockNumber: blockNumber, epoch: epoch, cache: cache}, nil
}

// newTestLight is like NewLight but builds a cache of testCacheSize bytes
// regardless of epoch, so tests can exercise the exact same code paths
// without the real multi-megabyte cache sizes.
func newTestLight(blockNumber uint64) (*Light, error) {
	epoch, ok := epochOf(blockNumber)
	if !ok {
		return nil, ErrOutOfRange
	}
	cache := make([]byte, testCacheSize)
	if err := generateCache(cache, seedHash(blockNumber)); err != nil {
		return nil, err
	}
	return &Light{blockNumber: blockNumber, epoch: epoch, cache: cache}, nil
}

// Close releases the cache. Light holds no other resources.
func (l *Light) Close() error {
	l.cache = nil
	return nil
}

// Compute runs the mix engine against l's cache for the given header hash and
// nonce, reconstructing each accessed dataset node on the fly.
func (l *Light) Compute(headerHash H256, nonce uint64, datasetSizeBytes uint64) (ReturnValue, error) {
	if datasetSizeBytes%mixWords != 0 {
		return ReturnValue{}, fmt.Errorf("%w: %d", ErrInvalidDatasetSize, datasetSizeBytes)
	}
	mixDigest, result := hashimotoLight(datasetSizeBytes, l.cache, headerHash[:], nonce)

	var rv ReturnValue
	copy(rv.MixHash[:], mixDigest)
	copy(rv.Result[:], result)
	rv.Success = true
	return rv, nil
}

// BlockNumber returns the block number Light was constructed for.
func (l *Light) BlockNumber() uint64 { return l.blockNumber }

// datasetSizeForBlock is the size a Full built from the same block number
// would materialize; Light.Compute needs it but does not keep it itself
// since Light never touches a dataset.
func datasetSizeForBlock(blockNumber uint64) (uint64, error) {
	epoch, ok := epochOf(blockNumber)
	if !ok {
		return 0, ErrOutOfRange
	}
	return datasetSize(epoch), nil
}
