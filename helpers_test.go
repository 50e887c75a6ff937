package cryptutil

import (
	"io"
	"os"
	"testing"

	"github.com/absfs/absfs"
	"github.com/absfs/memfs"
)

func newTestFS(t *testing.T) *memfs.FileSystem {
	t.Helper()

	fs, err := memfs.NewFS()
	if err != nil {
		t.Fatalf("failed to create memfs: %v", err)
	}
	return fs
}

func writeTestFile(t *testing.T, fs absfs.Filer, path string, data []byte) {
	t.Helper()

	f, err := fs.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		t.Fatalf("failed to create %s: %v", path, err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		t.Fatalf("failed to write %s: %v", path, err)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("failed to close %s: %v", path, err)
	}
}

func readTestFile(t *testing.T, fs absfs.Filer, path string) []byte {
	t.Helper()

	f, err := fs.OpenFile(path, os.O_RDONLY, 0)
	if err != nil {
		t.Fatalf("failed to open %s: %v", path, err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		t.Fatalf("failed to read %s: %v", path, err)
	}
	return data
}

func fileExists(fs absfs.Filer, path string) bool {
	_, err := fs.Stat(path)
	return err == nil
}

func testKey(t *testing.T) []byte {
	t.Helper()

	key, err := GenerateKey()
	if err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}
	return key
}

func newTestCipher(t *testing.T, fs absfs.Filer, config CipherConfig) *FileCipher {
	t.Helper()

	c, err := NewFileCipher(fs, config)
	if err != nil {
		t.Fatalf("NewFileCipher failed: %v", err)
	}
	return c
}
