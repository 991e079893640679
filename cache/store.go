// Package cache content-addresses compiled register-machine byte
// buffers so a build farm recompiling the same function object many
// times over (across incremental builds, across machines) can skip the
// recompiler entirely on a hit. The recompiler is a pure function of its
// input (spec.md §5), which is what makes this safe: the same source
// bytes under the same opcode table always produce the same output.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/deepnoodle-ai/regcore/op"
)

// Digest identifies a compiled artifact by the SHA-256 of its source
// bytes, the opcode table version, and its constant and local counts,
// so a table revision invalidates
// every existing cache entry rather than serving a stale compilation.
type Digest [sha256.Size]byte

// String returns the digest's hex encoding, used as the S3 object key
// and DynamoDB partition key.
func (d Digest) String() string {
	return hex.EncodeToString(d[:])
}

// NewDigest computes the cache key for a source instruction stream.
func NewDigest(codeBytes []byte, numConsts, numLocals uint32) Digest {
	h := sha256.New()
	h.Write(codeBytes)
	h.Write([]byte(op.TableVersion))
	var lenBuf [8]byte
	putUint32(lenBuf[0:4], numConsts)
	putUint32(lenBuf[4:8], numLocals)
	h.Write(lenBuf[:])
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

func putUint32(b []byte, v uint32) {
	b[0] = byte(v)
	b[1] = byte(v >> 8)
	b[2] = byte(v >> 16)
	b[3] = byte(v >> 24)
}

// Store is a content-addressed cache for lowered register-machine byte
// buffers, backed by an object store (S3Store) or any implementation a
// caller supplies (a map-backed fake is the natural choice in tests).
type Store interface {
	// Get returns the cached bytes for key, or ok=false on a miss.
	Get(ctx context.Context, key Digest) (program []byte, ok bool, err error)
	// Put stores program under key, overwriting any existing entry.
	Put(ctx context.Context, key Digest, program []byte) error
}
