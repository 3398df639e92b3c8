package vecash

import (
	"math/big"
	"sync"
)

// Protocol parameters, carried over unchanged from the original vecash/ethash
// family (see vecash.h in the upstream C sources).
const (
	epochLength = 30000 // blocks per epoch

	mixBytes   = 128 // width of mix
	hashBytes  = 64  // width of a cache/dataset node
	hashWords  = hashBytes / 4
	mixWords   = mixBytes / 4
	mixNodes   = mixBytes / hashBytes

	datasetParents = 256 // number of parent nodes mixed into a dataset item
	cacheRounds    = 3   // number of SeqMemoHash rounds
	loopAccesses   = 64  // number of hashimoto dataset accesses

	fnvPrime = 0x01000193

	dagMagicNum     = 0xFEE1DEADBADDCAFE
	dagMagicNumSize = 8

	maxEpoch = 2048 // highest epoch for which cache/dataset sizes are defined

	cacheInitBytes     = 1 << 24 // 16MB, for cache size calculation
	cacheGrowthBytes   = 1 << 17 // 128KB
	datasetInitBytes   = 1 << 30 // 1GB, for dataset size calculation
	datasetGrowthBytes = 1 << 23 // 8MB

	// testCacheSize and testDatasetSize are the sizes used by ModeTest: large
	// enough to hold a handful of nodes so the algorithm runs unmodified, small
	// enough to make a full test suite run complete in milliseconds.
	testCacheSize   = 1024
	testDatasetSize = 1024
)

var (
	cacheSizes   = make([]uint64, maxEpoch)
	datasetSizes = make([]uint64, maxEpoch)
	sizesOnce    sync.Once
)

// initSizes populates cacheSizes and datasetSizes by running the canonical
// growth-then-round-to-prime rule once. The result is byte-identical to the
// published, precomputed Ethash/vecash size tables; computing them lazily
// avoids carrying a multi-thousand-entry literal array in source.
func initSizes() {
	for i := 0; i < maxEpoch; i++ {
		cacheSizes[i] = calcCacheSize(i)
		datasetSizes[i] = calcDatasetSize(i)
	}
}

// calcCacheSize calculates the cache size for epoch. The size is the largest
// number below cacheInitBytes + cacheGrowthBytes*epoch - hashBytes of the form
// hashBytes*prime, i.e. the largest number of cache nodes that is prime and
// fits within the growth budget for this epoch.
func calcCacheSize(epoch int) uint64 {
	size := cacheInitBytes + cacheGrowthBytes*uint64(epoch) - hashBytes
	for !new(big.Int).SetUint64(size / hashBytes).ProbablyPrime(1) {
		size -= 2 * hashBytes
	}
	return size
}

// calcDatasetSize calculates the dataset size for epoch, following the same
// rule as calcCacheSize but aligned to mixBytes rather than hashBytes.
func calcDatasetSize(epoch int) uint64 {
	size := datasetInitBytes + datasetGrowthBytes*uint64(epoch) - mixBytes
	for !new(big.Int).SetUint64(size / mixBytes).ProbablyPrime(1) {
		size -= 2 * mixBytes
	}
	return size
}

// epochOf returns the epoch number a block belongs to, and whether it is
// within the range this engine has precomputed tables for.
func epochOf(block uint64) (epoch int, ok bool) {
	e := block / epochLength
	if e >= maxEpoch {
		return 0, false
	}
	return int(e), true
}

// cacheSize returns the verification cache size belonging to epoch. The
// caller must have already checked 0 <= epoch < maxEpoch.
func cacheSize(epoch int) uint64 {
	sizesOnce.Do(initSizes)
	return cacheSizes[epoch]
}

// datasetSize returns the mining dataset size belonging to epoch. The caller
// must have already checked 0 <= epoch < maxEpoch.
func datasetSize(epoch int) uint64 {
	sizesOnce.Do(initSizes)
	return datasetSizes[epoch]
}
