package vecash

import (
	"bytes"
	"testing"

	"golang.org/x/crypto/sha3"
)

func TestSeedHashDependsOnlyOnEpoch(t *testing.T) {
	a := seedHash(epochLength)
	b := seedHash(epochLength*2 - 1)
	if !bytes.Equal(a, b) {
		t.Errorf("seedHash differs within the same epoch: %x vs %x", a, b)
	}
	c := seedHash(epochLength * 2)
	if bytes.Equal(a, c) {
		t.Errorf("seedHash did not change across an epoch boundary")
	}
}

func TestSeedHashZeroForFirstEpoch(t *testing.T) {
	zero := make([]byte, 32)
	for _, block := range []uint64{0, 1, epochLength - 1} {
		if got := seedHash(block); !bytes.Equal(got, zero) {
			t.Errorf("seedHash(%d) = %x, want the zero hash", block, got)
		}
	}
}

func TestGenerateCacheIsDeterministic(t *testing.T) {
	seed := seedHash(epochLength * 3)
	a := make([]byte, testCacheSize)
	b := make([]byte, testCacheSize)
	if err := generateCache(a, seed); err != nil {
		t.Fatal(err)
	}
	if err := generateCache(b, seed); err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Errorf("generateCache is not deterministic for the same seed")
	}
}

func TestGenerateCacheRejectsMisalignedSize(t *testing.T) {
	if err := generateCache(make([]byte, hashBytes+1), seedHash(0)); err != ErrInvalidCacheSize {
		t.Errorf("got %v, want ErrInvalidCacheSize", err)
	}
}

func TestGenerateDatasetItemIsPure(t *testing.T) {
	cache := make([]byte, testCacheSize)
	if err := generateCache(cache, seedHash(0)); err != nil {
		t.Fatal(err)
	}
	keccak512 := makeHasher(sha3.NewLegacyKeccak512())
	a := generateDatasetItem(cache, 3, keccak512)
	b := generateDatasetItem(cache, 3, keccak512)
	if !bytes.Equal(a, b) {
		t.Errorf("generateDatasetItem is not a pure function of (cache, index)")
	}
}

func TestHashimotoLightAndFullAgree(t *testing.T) {
	cache := make([]byte, testCacheSize)
	if err := generateCache(cache, seedHash(0)); err != nil {
		t.Fatal(err)
	}
	dataset := make([]byte, testDatasetSize)
	if err := generateDataset(dataset, cache, nil); err != nil {
		t.Fatal(err)
	}

	hdrHash := bytes.Repeat([]byte{0x42}, 32)
	nonce := uint64(9)

	lightMix, lightResult := hashimotoLight(uint64(len(dataset)), cache, hdrHash, nonce)
	fullMix, fullResult := hashimotoFull(dataset, hdrHash, nonce)

	if !bytes.Equal(lightMix, fullMix) {
		t.Errorf("light and full mix digests differ: %x vs %x", lightMix, fullMix)
	}
	if !bytes.Equal(lightResult, fullResult) {
		t.Errorf("light and full results differ: %x vs %x", lightResult, fullResult)
	}
}

func TestQuickHashAgreesWithHashimoto(t *testing.T) {
	cache := make([]byte, testCacheSize)
	if err := generateCache(cache, seedHash(0)); err != nil {
		t.Fatal(err)
	}
	hdrHash := bytes.Repeat([]byte{0x07}, 32)
	nonce := uint64(123456)

	mixDigest, result := hashimotoLight(testDatasetSize, cache, hdrHash, nonce)
	quick := quickHash(hdrHash, nonce, mixDigest)
	if !bytes.Equal(quick, result) {
		t.Errorf("quickHash(%x) = %x, want %x", mixDigest, quick, result)
	}
}

func TestHashimotoChangesWithNonce(t *testing.T) {
	cache := make([]byte, testCacheSize)
	if err := generateCache(cache, seedHash(0)); err != nil {
		t.Fatal(err)
	}
	hdrHash := bytes.Repeat([]byte{0x11}, 32)

	_, r1 := hashimotoLight(testDatasetSize, cache, hdrHash, 1)
	_, r2 := hashimotoLight(testDatasetSize, cache, hdrHash, 2)
	if bytes.Equal(r1, r2) {
		t.Errorf("hashimoto result did not change between distinct nonces")
	}
}
