package digest

import (
	"crypto/md5"  // #nosec G501 -- used for file integrity manifests only
	"crypto/sha1" // #nosec G505 -- used for file integrity manifests only
	"crypto/sha512"
	"fmt"
	"hash"
	"strings"

	"github.com/minio/sha256-simd"
	"github.com/zeebo/blake3"
)

// DefaultAlgorithm produces the 64 character digests the manifest format expects.
const DefaultAlgorithm = "sha256"

var algorithms = map[string]func() hash.Hash{
	"sha256": sha256.New,
	"blake3": func() hash.Hash { return blake3.New() },
	"sha512": sha512.New,
	"sha384": sha512.New384,
	"sha1":   sha1.New, // #nosec G401
	"md5":    md5.New,  // #nosec G401
}

// Lookup returns the constructor for the named algorithm. Names are matched
// case-insensitively.
func Lookup(algorithm string) (func() hash.Hash, error) {
	name := strings.ToLower(strings.TrimSpace(algorithm))
	if name == "" {
		name = DefaultAlgorithm
	}
	fn, ok := algorithms[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedAlgorithm, algorithm)
	}
	return fn, nil
}

// Algorithms lists the supported algorithm names, default first.
func Algorithms() []string {
	return []string{"sha256", "blake3", "sha512", "sha384", "sha1", "md5"}
}
