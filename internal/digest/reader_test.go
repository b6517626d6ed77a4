package digest

import (
	"bytes"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
)

const helloSHA256 = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

func expectedHex(content []byte) string {
	h := sha256.Sum256(content)
	return hex.EncodeToString(h[:])
}

func makeTestData(size int) []byte {
	b := make([]byte, size)
	_, _ = rand.Read(b) // fine for tests
	return b
}

func TestHashFile_TableDriven(t *testing.T) {
	newHash, err := Lookup("sha256")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}

	contentSmall := []byte("hello")
	contentLarge := bytes.Repeat([]byte("A"), 2<<20) // 2 MiB
	contentOdd := makeTestData(1<<20 + 17)

	fsys := fstest.MapFS{
		"small.bin": {Data: contentSmall},
		"large.bin": {Data: contentLarge},
		"odd.bin":   {Data: contentOdd},
		"empty.bin": {Data: nil},
	}

	tests := []struct {
		name     string
		file     string
		content  []byte
		bufSize  int
		wantKind ErrorKind
		wantErr  bool
	}{
		{"small default buffer", "small.bin", contentSmall, 1 << 20, "", false},
		{"small one byte buffer", "small.bin", contentSmall, 1, "", false},
		{"large exact multiple", "large.bin", contentLarge, 1 << 20, "", false},
		{"odd tail", "odd.bin", contentOdd, 4096, "", false},
		{"empty file", "empty.bin", nil, 64, "", false},
		{"file missing", "missing.bin", nil, 64, KindNotFound, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sum, n, err := HashFile(fsys, tt.file, newHash, make([]byte, tt.bufSize))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if got := Classify(err); got != tt.wantKind {
					t.Fatalf("kind mismatch: got %s want %s", got, tt.wantKind)
				}
				if sum != "" {
					t.Fatalf("expected no digest on failure, got %s", sum)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if want := expectedHex(tt.content); sum != want {
				t.Fatalf("hash mismatch:\n got: %s\nwant: %s", sum, want)
			}
			if n != int64(len(tt.content)) {
				t.Fatalf("bytes mismatch: got %d want %d", n, len(tt.content))
			}
		})
	}
}

func TestHashFile_Hello(t *testing.T) {
	newHash, _ := Lookup(DefaultAlgorithm)
	fsys := fstest.MapFS{"a.txt": {Data: []byte("hello")}}

	sum, _, err := HashFile(fsys, "a.txt", newHash, make([]byte, 1<<20))
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	if sum != helloSHA256 {
		t.Fatalf("got %s want %s", sum, helloSHA256)
	}
}

func TestHashFile_BufferSizeInvariant(t *testing.T) {
	data := makeTestData(3<<20 + 123)
	fsys := fstest.MapFS{"data.bin": {Data: data}}

	for _, alg := range Algorithms() {
		newHash, err := Lookup(alg)
		if err != nil {
			t.Fatalf("Lookup(%s): %v", alg, err)
		}

		var first string
		for _, size := range []int{64, 4096, 1048576} {
			sum, _, err := HashFile(fsys, "data.bin", newHash, make([]byte, size))
			if err != nil {
				t.Fatalf("%s/%d: %v", alg, size, err)
			}
			if first == "" {
				first = sum
				continue
			}
			if sum != first {
				t.Fatalf("%s: buffer %d produced %s, want %s", alg, size, sum, first)
			}
		}
	}
}

func TestHashFile_DeletedFileIsNotFound(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "gone.txt")
	if err := os.WriteFile(p, []byte("soon gone"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := os.Remove(p); err != nil {
		t.Fatalf("remove: %v", err)
	}

	newHash, _ := Lookup(DefaultAlgorithm)
	_, _, err := HashFile(os.DirFS(dir), "gone.txt", newHash, make([]byte, 64))
	if err == nil {
		t.Fatalf("expected error")
	}
	if got := Classify(err); got != KindNotFound {
		t.Fatalf("got kind %s want %s", got, KindNotFound)
	}
}

type deniedFS struct{}

func (deniedFS) Open(name string) (fs.File, error) {
	return nil, &fs.PathError{Op: "open", Path: name, Err: fs.ErrPermission}
}

func TestHashFile_PermissionDenied(t *testing.T) {
	newHash, _ := Lookup(DefaultAlgorithm)
	_, _, err := HashFile(deniedFS{}, "secret.bin", newHash, make([]byte, 64))

	var fe *FileError
	if !errors.As(err, &fe) {
		t.Fatalf("expected *FileError, got %T", err)
	}
	if fe.Kind != KindPermissionDenied {
		t.Fatalf("got kind %s want %s", fe.Kind, KindPermissionDenied)
	}
}

type failingReader struct {
	good int
	err  error
}

func (r *failingReader) Read(p []byte) (int, error) {
	if r.good <= 0 {
		return 0, r.err
	}
	n := len(p)
	if n > r.good {
		n = r.good
	}
	r.good -= n
	return n, nil
}

func TestHashReader_MidStreamError(t *testing.T) {
	newHash, _ := Lookup(DefaultAlgorithm)
	boom := errors.New("device went away")

	n, err := HashReader(newHash(), &failingReader{good: 100, err: boom}, make([]byte, 64))
	if !errors.Is(err, boom) {
		t.Fatalf("expected %v, got %v", boom, err)
	}
	if n != 100 {
		t.Fatalf("read %d bytes before failing, want 100", n)
	}
}

func TestHashReader_EmptyBuffer(t *testing.T) {
	newHash, _ := Lookup(DefaultAlgorithm)
	if _, err := HashReader(newHash(), io.LimitReader(nil, 0), nil); !errors.Is(err, ErrEmptyBuffer) {
		t.Fatalf("expected ErrEmptyBuffer, got %v", err)
	}
}

func TestLookup(t *testing.T) {
	tests := []struct {
		name    string
		alg     string
		size    int
		wantErr bool
	}{
		{"default", "", 32, false},
		{"sha256 upper", "SHA256", 32, false},
		{"blake3", "blake3", 32, false},
		{"sha512", "sha512", 64, false},
		{"sha384", "sha384", 48, false},
		{"sha1", "sha1", 20, false},
		{"md5", "md5", 16, false},
		{"unknown", "crc32", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn, err := Lookup(tt.alg)
			if tt.wantErr {
				if !errors.Is(err, ErrUnsupportedAlgorithm) {
					t.Fatalf("expected ErrUnsupportedAlgorithm, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := fn().Size(); got != tt.size {
				t.Fatalf("digest size: got %d want %d", got, tt.size)
			}
		})
	}
}
