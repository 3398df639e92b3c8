package vecash

import "testing"

func TestCheckDifficultyBoundary(t *testing.T) {
	var hash, boundary H256
	hash[0] = 0x10
	boundary[0] = 0x20
	if !checkDifficulty(hash, boundary) {
		t.Errorf("expected hash below boundary to pass")
	}

	hash[0], boundary[0] = boundary[0], hash[0]
	if checkDifficulty(hash, boundary) {
		t.Errorf("expected hash above boundary to fail")
	}
}

func TestCheckDifficultyEqualPasses(t *testing.T) {
	var h H256
	h[31] = 0x01
	if !checkDifficulty(h, h) {
		t.Errorf("a hash exactly equal to the boundary should pass")
	}
}

func TestQuickCheckDifficultyMatchesQuickHash(t *testing.T) {
	var hdrHash, mixHash H256
	hdrHash[0] = 0x5
	mixHash[0] = 0x9

	result := QuickHash(hdrHash, 99, mixHash)

	passBoundary := result
	if !QuickCheckDifficulty(hdrHash, 99, mixHash, passBoundary) {
		t.Errorf("QuickCheckDifficulty should pass against a boundary equal to the result")
	}

	var failBoundary H256 // all zero, smaller than any non-zero result
	if result != failBoundary && QuickCheckDifficulty(hdrHash, 99, mixHash, failBoundary) {
		t.Errorf("QuickCheckDifficulty should fail against the zero boundary")
	}
}

func TestGetSeedHashMatchesInternal(t *testing.T) {
	got := GetSeedHash(epochLength * 2)
	want := seedHash(epochLength * 2)
	if got.Bytes() == nil || string(got.Bytes()) != string(want) {
		t.Errorf("GetSeedHash(%d) = %x, want %x", epochLength*2, got.Bytes(), want)
	}
}
