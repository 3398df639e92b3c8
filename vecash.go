// Package vecash implements the memory-hard, Ethash-family proof-of-work
// hashing engine: epoch-parameterized seed derivation, a pseudo-random
// verification cache built with SeqMemoHash, on-demand dataset-node
// reconstruction, full-dataset materialization to a memory-mapped DAG file,
// and the hashimoto mix-and-reduce function used to turn a (header hash,
// nonce) pair into a mix digest and result suitable for comparison against a
// target boundary.
package vecash

// H256 is a 32-byte hash value: a header hash, a seed hash, a mix digest, or
// a final result.
type H256 [32]byte

// Bytes returns h as a plain byte slice.
func (h H256) Bytes() []byte { return h[:] }

// ReturnValue is the outcome of a Compute call: the final result hash, the
// mix digest that produced it, and whether the call succeeded. Fields other
// than Success are undefined when Success is false; Engine.Compute instead
// returns a non-nil error in that case, so ReturnValue.Success is mostly
// useful to callers that received a value by copy.
type ReturnValue struct {
	Result  H256
	MixHash H256
	Success bool
}

// GetSeedHash returns the seedhash for the epoch containing block: SHA3-256
// applied to the zero hash once per elapsed epoch. Blocks in the same epoch
// share a seed.
func GetSeedHash(block uint64) H256 {
	var h H256
	copy(h[:], seedHash(block))
	return h
}

// QuickHash recomputes only the final SHA3-256 step of the mix engine from a
// candidate mix digest, letting a caller reject an invalid submission without
// running the memory-hard loop.
func QuickHash(headerHash H256, nonce uint64, mixHash H256) H256 {
	var out H256
	copy(out[:], quickHash(headerHash[:], nonce, mixHash[:]))
	return out
}

// QuickCheckDifficulty reports whether QuickHash(headerHash, nonce, mixHash),
// read as a big-endian 256-bit integer, is at most boundary.
func QuickCheckDifficulty(headerHash H256, nonce uint64, mixHash H256, boundary H256) bool {
	return checkDifficulty(QuickHash(headerHash, nonce, mixHash), boundary)
}
