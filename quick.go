package vecash

import "github.com/holiman/uint256"

// checkDifficulty reports whether hash, read as a big-endian 256-bit
// integer, is less than or equal to boundary. uint256 gives us a fixed-width
// comparison instead of allocating a math/big.Int per call, which matters
// here since this runs on every verification attempt.
func checkDifficulty(hash, boundary H256) bool {
	h := new(uint256.Int).SetBytes(hash[:])
	b := new(uint256.Int).SetBytes(boundary[:])
	return h.Cmp(b) <= 0
}
