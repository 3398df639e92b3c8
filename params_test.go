package vecash

import "testing"

func TestCacheSizeGrowsWithEpoch(t *testing.T) {
	a := cacheSize(0)
	b := cacheSize(1)
	if b <= a {
		t.Errorf("cacheSize(1) = %d, want more than cacheSize(0) = %d", b, a)
	}
}

func TestDatasetSizeGrowsWithEpoch(t *testing.T) {
	a := datasetSize(0)
	b := datasetSize(1)
	if b <= a {
		t.Errorf("datasetSize(1) = %d, want more than datasetSize(0) = %d", b, a)
	}
}

func TestCacheSizeAlignedToHashBytes(t *testing.T) {
	for _, epoch := range []int{0, 1, 10, 100} {
		if cacheSize(epoch)%hashBytes != 0 {
			t.Errorf("cacheSize(%d) = %d is not a multiple of hashBytes", epoch, cacheSize(epoch))
		}
	}
}

func TestDatasetSizeAlignedToMixBytes(t *testing.T) {
	for _, epoch := range []int{0, 1, 10, 100} {
		if datasetSize(epoch)%mixBytes != 0 {
			t.Errorf("datasetSize(%d) = %d is not a multiple of mixBytes", epoch, datasetSize(epoch))
		}
	}
}

func TestEpochOfBoundaries(t *testing.T) {
	cases := []struct {
		block     uint64
		wantEpoch int
		wantOK    bool
	}{
		{0, 0, true},
		{epochLength - 1, 0, true},
		{epochLength, 1, true},
		{epochLength*2 - 1, 1, true},
		{epochLength * maxEpoch, 0, false},
	}
	for _, c := range cases {
		epoch, ok := epochOf(c.block)
		if ok != c.wantOK || (ok && epoch != c.wantEpoch) {
			t.Errorf("epochOf(%d) = (%d, %v), want (%d, %v)", c.block, epoch, ok, c.wantEpoch, c.wantOK)
		}
	}
}
