// Package hasher computes content digests for encoded payloads.
package hasher

import (
	"encoding/binary"
	"encoding/hex"
	"io"

	"github.com/cespare/xxhash/v2"
)

// DigestLen is the number of hex characters in a full digest.
const DigestLen = 16

// Digest returns the xxHash64 of data as 16 lowercase hex characters.
// Identical payloads always produce identical digests, which is how the
// report validator and the idempotence checks compare outputs.
func Digest(data []byte) string {
	return encode(xxhash.Sum64(data))
}

// DigestReader streams r through xxHash64 and returns the same digest
// Digest would for the full content.
func DigestReader(r io.Reader) (string, error) {
	h := xxhash.New()
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return encode(h.Sum64()), nil
}

// Short truncates a digest for use in log lines.
func Short(digest string) string {
	if len(digest) > 8 {
		return digest[:8]
	}
	return digest
}

func encode(sum uint64) string {
	return hex.EncodeToString(binary.BigEndian.AppendUint64(nil, sum))
}
