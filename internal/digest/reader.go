package digest

import (
	"encoding/hex"
	"errors"
	"hash"
	"io"
	"io/fs"
)

// HashFile streams name from fsys through a fresh hash built by newHash,
// reading in chunks of exactly len(buf) bytes. It returns the lowercase hex
// digest and the number of bytes read. On error no digest is returned and the
// error is a *FileError.
func HashFile(fsys fs.FS, name string, newHash func() hash.Hash, buf []byte) (string, int64, error) {
	if len(buf) == 0 {
		return "", 0, ErrEmptyBuffer
	}

	f, err := fsys.Open(name)
	if err != nil {
		return "", 0, fileError(name, err)
	}
	defer func() {
		_ = f.Close()
	}()

	h := newHash()
	n, err := HashReader(h, f, buf)
	if err != nil {
		return "", 0, fileError(name, err)
	}
	return hex.EncodeToString(h.Sum(nil)), n, nil
}

// HashReader feeds r into h chunk by chunk until EOF.
func HashReader(h hash.Hash, r io.Reader, buf []byte) (int64, error) {
	if len(buf) == 0 {
		return 0, ErrEmptyBuffer
	}

	var total int64
	for {
		n, rerr := io.ReadFull(r, buf)
		if n > 0 {
			if _, werr := h.Write(buf[:n]); werr != nil {
				return total, werr
			}
			total += int64(n)
		}
		if rerr == nil {
			continue
		}
		if errors.Is(rerr, io.EOF) || errors.Is(rerr, io.ErrUnexpectedEOF) {
			return total, nil
		}
		return total, rerr
	}
}
