package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckFolder(t *testing.T) {
	base := t.TempDir()

	dir, err := CheckFolder(base, "figures/2024")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if dir != filepath.Join(base, "figures", "2024") {
		t.Errorf("got %s", dir)
	}
	if info, err := os.Stat(dir); err != nil || !info.IsDir() {
		t.Fatalf("folder not created: %v", err)
	}

	// existing folders are left alone
	if _, err := CheckFolder(dir, ""); err != nil {
		t.Errorf("unexpected error on existing folder: %v", err)
	}

	file := filepath.Join(base, "plain")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := CheckFolder(file, "sub"); err == nil {
		t.Errorf("expected an error below a regular file")
	}
}

func TestLoadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "floats.json")
	if err := os.WriteFile(path, []byte(`{"region": "peru", "floats": [3901234, 13857]}`), 0o644); err != nil {
		t.Fatal(err)
	}

	var content struct {
		Region string `json:"region"`
		Floats []int  `json:"floats"`
	}
	if err := LoadJSON(path, &content); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if content.Region != "peru" || len(content.Floats) != 2 {
		t.Errorf("unexpected content %+v", content)
	}

	if err := LoadJSON(filepath.Join(t.TempDir(), "missing.json"), &content); err == nil {
		t.Errorf("expected an error for a missing file")
	}
	bad := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(bad, []byte("{"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := LoadJSON(bad, &content); err == nil {
		t.Errorf("expected an error for malformed JSON")
	}
}
