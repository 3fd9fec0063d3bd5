package normalize

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
)

// Fingerprint hashes the ordered concatenation of a record's designated
// unique-key values into a deterministic identity. Each value is prefixed
// with its length so no arrangement of value boundaries can collide.
func Fingerprint(values ...string) string {
	h := sha256.New()
	var prefix [8]byte
	for _, v := range values {
		binary.BigEndian.PutUint64(prefix[:], uint64(len(v)))
		h.Write(prefix[:])
		h.Write([]byte(v))
	}
	return hex.EncodeToString(h.Sum(nil))
}
