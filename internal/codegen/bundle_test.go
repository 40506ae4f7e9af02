package codegen

import (
	"archive/zip"
	"bytes"
	"io"
	"testing"
)

func TestBundle_RoundTrip(t *testing.T) {
	files := map[string]string{
		"B.cs":      "content b",
		"A.cs":      "content a",
		"sub/C.cs":  "content c",
		"README.md": "readme",
	}

	data, err := Bundle("LogisQ.Contracts.StorageSlotting", files)
	if err != nil {
		t.Fatalf("Bundle() error = %v, want nil", err)
	}

	r, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		t.Fatalf("zip.NewReader() error = %v, want nil", err)
	}
	if len(r.File) != len(files) {
		t.Fatalf("len(File) = %v, want %v", len(r.File), len(files))
	}

	// Entries come out sorted by path, all under the root.
	wantOrder := []string{
		"LogisQ.Contracts.StorageSlotting/A.cs",
		"LogisQ.Contracts.StorageSlotting/B.cs",
		"LogisQ.Contracts.StorageSlotting/README.md",
		"LogisQ.Contracts.StorageSlotting/sub/C.cs",
	}
	for i, want := range wantOrder {
		if r.File[i].Name != want {
			t.Errorf("File[%d].Name = %v, want %v", i, r.File[i].Name, want)
		}
	}

	rc, err := r.File[0].Open()
	if err != nil {
		t.Fatalf("Open() error = %v, want nil", err)
	}
	defer rc.Close()
	content, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll() error = %v, want nil", err)
	}
	if string(content) != "content a" {
		t.Errorf("content = %q, want %q", content, "content a")
	}
}

func TestBundle_Deterministic(t *testing.T) {
	files := map[string]string{"X.cs": "x", "Y.cs": "y", "Z.cs": "z"}

	first, err := Bundle("pkg", files)
	if err != nil {
		t.Fatalf("Bundle() error = %v, want nil", err)
	}
	for i := 0; i < 5; i++ {
		next, err := Bundle("pkg", files)
		if err != nil {
			t.Fatalf("Bundle() error = %v, want nil", err)
		}
		if !bytes.Equal(first, next) {
			t.Fatalf("run %d produced different archive bytes", i)
		}
	}
}
