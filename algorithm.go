package vecash

import (
	"encoding/binary"
	"hash"

	"golang.org/x/crypto/sha3"
)

// hasher is a repetitive hasher allowing the same hash data structures to be
// reused between hash runs instead of requiring new ones to be created. The
// returned function is not thread safe.
type hasher func(dest []byte, data []byte)

// makeHasher creates a repetitive hasher, reusing the underlying hash state
// across calls via its Read method (sha3.state supports Read to extract the
// sum without the allocation overhead of Sum). The hash is reset before every
// use, so callers may freely interleave independent inputs.
func makeHasher(h hash.Hash) hasher {
	type readerHash interface {
		hash.Hash
		Read([]byte) (int, error)
	}
	rh, ok := h.(readerHash)
	if !ok {
		panic("hash does not support Read")
	}
	outputLen := rh.Size()
	return func(dest []byte, data []byte) {
		rh.Reset()
		rh.Write(data)
		rh.Read(dest[:outputLen])
	}
}

// word reads the i'th little-endian 32-bit word out of b.
func word(b []byte, i int) uint32 {
	return binary.LittleEndian.Uint32(b[i*4:])
}

// putWord writes v as the i'th little-endian 32-bit word of b.
func putWord(b []byte, i int, v uint32) {
	binary.LittleEndian.PutUint32(b[i*4:], v)
}

// fnv is the Ethash flavour of the FNV-1 mix: fnv(x, y) = (x*FNV_PRIME) XOR y,
// all arithmetic modulo 2^32.
func fnv(x, y uint32) uint32 {
	return (x * fnvPrime) ^ y
}

// fnvHashWords XORs-and-mixes every word of src into dst in place using fnv.
func fnvHashWords(dst, src []byte) {
	for w := 0; w < hashWords; w++ {
		putWord(dst, w, fnv(word(dst, w), word(src, w)))
	}
}

// seedHash returns the seed to use for generating a verification cache and
// mining dataset for the epoch containing block. It is the zero hash iterated
// through SHA3-256 once per elapsed epoch.
func seedHash(block uint64) []byte {
	seed := make([]byte, 32)
	if block < epochLength {
		return seed
	}
	keccak256 := makeHasher(sha3.NewLegacyKeccak256())
	for i := 0; i < int(block/epochLength); i++ {
		keccak256(seed, seed)
	}
	return seed
}

// generateCache fills dest (which must already be allocated to a valid cache
// size) with the SeqMemoHash verification cache for seed, following Sergio
// Demian Lerner's "Strict Memory Hard Hashing Functions" construction: a
// sequential Keccak-512 chain followed by cacheRounds of pseudo-random XOR
// mixing.
func generateCache(dest []byte, seed []byte) error {
	if len(dest)%hashBytes != 0 {
		return ErrInvalidCacheSize
	}
	rows := len(dest) / hashBytes

	keccak512 := makeHasher(sha3.NewLegacyKeccak512())
	keccak512(dest[0:hashBytes], seed)
	for i := 1; i < rows; i++ {
		keccak512(dest[i*hashBytes:(i+1)*hashBytes], dest[(i-1)*hashBytes:i*hashBytes])
	}

	temp := make([]byte, hashBytes)
	for round := 0; round < cacheRounds; round++ {
		for i := 0; i < rows; i++ {
			node := dest[i*hashBytes : (i+1)*hashBytes]
			srcIdx := int(word(node, 0)) % rows
			prevIdx := (rows - 1 + i) % rows

			copy(temp, dest[prevIdx*hashBytes:(prevIdx+1)*hashBytes])
			src := dest[srcIdx*hashBytes : (srcIdx+1)*hashBytes]
			for j := range temp {
				temp[j] ^= src[j]
			}
			keccak512(node, temp)
		}
	}
	return nil
}

// generateDatasetItem computes the 64-byte dataset node at index from cache,
// reusing keccak512 across calls. cache must be a valid cache buffer (length
// a multiple of hashBytes).
func generateDatasetItem(cache []byte, index uint32, keccak512 hasher) []byte {
	rows := uint32(len(cache) / hashBytes)

	mix := make([]byte, hashBytes)
	off := (index % rows) * hashBytes
	copy(mix, cache[off:off+hashBytes])
	putWord(mix, 0, word(mix, 0)^index)
	keccak512(mix, mix)

	for i := uint32(0); i < datasetParents; i++ {
		parentIdx := fnv(index^i, word(mix, int(i%hashWords))) % rows
		parentOff := parentIdx * hashBytes
		fnvHashWords(mix, cache[parentOff:parentOff+hashBytes])
	}
	keccak512(mix, mix)
	return mix
}

// generateDataset fills dest (length a multiple of hashBytes and of
// 4*mixWords) with dataset nodes derived from cache, invoking progress with a
// 0-100 percentage roughly every 1% of the work. If progress returns false,
// generation stops early and ErrCanceled is returned; dest is left partially
// filled.
func generateDataset(dest []byte, cache []byte, progress func(percent int) bool) error {
	if len(dest)%(4*mixWords) != 0 || len(dest)%hashBytes != 0 {
		return ErrInvalidDatasetSize
	}
	items := uint32(len(dest) / hashBytes)
	onePercent := items / 100
	if onePercent == 0 {
		onePercent = 1
	}

	keccak512 := makeHasher(sha3.NewLegacyKeccak512())
	for i := uint32(0); i < items; i++ {
		if progress != nil && i%onePercent == 0 {
			if !progress(int(uint64(i) * 100 / uint64(items))) {
				return ErrCanceled
			}
		}
		item := generateDatasetItem(cache, i, keccak512)
		copy(dest[uint64(i)*hashBytes:], item)
	}
	return nil
}

// hashimoto aggregates data from the dataset (retrieved one node at a time
// through lookup, which hides whether the caller holds the full materialized
// DAG or is reconstructing nodes on the fly from a cache) to produce the mix
// digest and final result for a header hash and nonce, against a dataset of
// the given byte size.
func hashimoto(hdrHash []byte, nonce uint64, size uint64, lookup func(index uint32) []byte) (mixDigest, result []byte) {
	seed := make([]byte, 40)
	copy(seed, hdrHash)
	binary.LittleEndian.PutUint64(seed[32:], nonce)

	keccak512 := makeHasher(sha3.NewLegacyKeccak512())
	s := make([]byte, hashBytes)
	keccak512(s, seed)

	mix := make([]byte, mixBytes)
	for w := 0; w < mixWords; w++ {
		putWord(mix, w, word(s, w%hashWords))
	}

	pageSize := uint64(4 * mixWords)
	numFullPages := uint32(size / pageSize)

	for i := uint32(0); i < loopAccesses; i++ {
		p := fnv(word(s, 0)^i, word(mix, int(i%mixWords))) % numFullPages
		for n := uint32(0); n < mixNodes; n++ {
			dagNode := lookup(p*mixNodes + n)
			fnvHashWords(mix[n*hashBytes:(n+1)*hashBytes], dagNode)
		}
	}

	compressed := make([]byte, mixBytes/4)
	for i := 0; i < mixWords; i += 4 {
		reduction := word(mix, i)
		reduction = fnv(reduction, word(mix, i+1))
		reduction = fnv(reduction, word(mix, i+2))
		reduction = fnv(reduction, word(mix, i+3))
		putWord(compressed, i/4, reduction)
	}

	keccak256 := makeHasher(sha3.NewLegacyKeccak256())
	final := make([]byte, 64+32)
	copy(final, s)
	copy(final[64:], compressed)
	resultHash := make([]byte, 32)
	keccak256(resultHash, final)

	return compressed, resultHash
}

// hashimotoLight reconstructs dataset nodes on the fly from cache.
func hashimotoLight(size uint64, cache []byte, hdrHash []byte, nonce uint64) (mixDigest, result []byte) {
	keccak512 := makeHasher(sha3.NewLegacyKeccak512())
	lookup := func(index uint32) []byte {
		return generateDatasetItem(cache, index, keccak512)
	}
	return hashimoto(hdrHash, nonce, size, lookup)
}

// hashimotoFull looks dataset nodes up directly in a materialized dataset.
func hashimotoFull(dataset []byte, hdrHash []byte, nonce uint64) (mixDigest, result []byte) {
	lookup := func(index uint32) []byte {
		off := uint64(index) * hashBytes
		return dataset[off : off+hashBytes]
	}
	return hashimoto(hdrHash, nonce, uint64(len(dataset)), lookup)
}

// quickHash recomputes only the final SHA3-256 step of hashimoto from a
// candidate mix digest, without touching the cache or dataset at all. It lets
// a caller reject an invalid (header, nonce, mixDigest) triple cheaply.
func quickHash(hdrHash []byte, nonce uint64, mixDigest []byte) []byte {
	seed := make([]byte, 40)
	copy(seed, hdrHash)
	binary.LittleEndian.PutUint64(seed[32:], nonce)

	keccak512 := makeHasher(sha3.NewLegacyKeccak512())
	s := make([]byte, hashBytes)
	keccak512(s, seed)

	final := make([]byte, hashBytes+32)
	copy(final, s)
	copy(final[hashBytes:], mixDigest)

	keccak256 := makeHasher(sha3.NewLegacyKeccak256())
	out := make([]byte, 32)
	keccak256(out, final)
	return out
}
