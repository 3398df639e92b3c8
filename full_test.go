package vecash

import (
	"bytes"
	"os"
	"testing"
)

func TestFullRoundTripThroughDisk(t *testing.T) {
	dir, err := os.MkdirTemp("", "vecash-full-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	light, err := newTestLight(0)
	if err != nil {
		t.Fatal(err)
	}
	defer light.Close()

	full, err := newTestFull(light, dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	want := append([]byte(nil), full.Dataset()...)
	if err := full.Close(); err != nil {
		t.Fatal(err)
	}

	// Reopening the same epoch should attach to the file just written rather
	// than regenerating it.
	full2, err := newTestFull(light, dir, func(int) bool {
		t.Fatal("progress callback invoked on a MEMO_MATCH reopen")
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	defer full2.Close()

	if !bytes.Equal(want, full2.Dataset()) {
		t.Errorf("reattached dataset differs from the originally generated one")
	}
}

func TestFullSelfHealsOnSizeMismatch(t *testing.T) {
	dir, err := os.MkdirTemp("", "vecash-full-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	light, err := newTestLight(0)
	if err != nil {
		t.Fatal(err)
	}
	defer light.Close()

	full, err := newTestFull(light, dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	path := full.file.Name()
	if err := full.Close(); err != nil {
		t.Fatal(err)
	}

	if err := os.Truncate(path, 4); err != nil {
		t.Fatal(err)
	}

	regenerated := false
	full2, err := newTestFull(light, dir, func(int) bool {
		regenerated = true
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	defer full2.Close()

	if !regenerated {
		t.Errorf("expected the truncated DAG file to be regenerated")
	}
}

func TestFullSelfHealsOnBadMagic(t *testing.T) {
	dir, err := os.MkdirTemp("", "vecash-full-test")
	if err != nil {
		t.Fatal(err)
	}
	defer os.RemoveAll(dir)

	light, err := newTestLight(0)
	if err != nil {
		t.Fatal(err)
	}
	defer light.Close()

	full, err := newTestFull(light, dir, nil)
	if err != nil {
		t.Fatal(err)
	}
	path := full.file.Name()
	if err := full.Close(); err != nil {
		t.Fatal(err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := f.WriteAt(make([]byte, dagMagicNumSize), 0); err != nil {
		t.Fatal(err)
	}
	f.Close()

	regenerated := false
	full2, err := newTestFull(light, dir, func(int) bool {
		regenerated = true
		return true
	})
	if err != nil {
		t.Fatal(err)
	}
	defer full2.Close()

	if !regenerated {
		t.Errorf("expected a bad magic number to trigger regeneration")
	}
}

func TestNewFullRejectsMisalignedSize(t *testing.T) {
	light, err := newTestLight(0)
	if err != nil {
		t.Fatal(err)
	}
	defer light.Close()

	_, err = newFullAt(t.TempDir(), 0, testDatasetSize+1, light.cache, nil)
	if err != ErrInvalidDatasetSize {
		t.Errorf("got %v, want ErrInvalidDatasetSize", err)
	}
}
