// Package idcodec converts between unsigned 64-bit domain ids and the
// signed 64-bit integers the store persists them as, and mints new ids
// from a cryptographic random source.
package idcodec

import (
	"crypto/rand"
	"encoding/binary"
)

// Uint64ToSint64 reinterprets the 64 bits of x as a signed integer
// without changing them. Used because the underlying store column type
// is signed-integer only.
func Uint64ToSint64(x uint64) int64 {
	return int64(x)
}

// Sint64ToUint64 is the inverse of Uint64ToSint64.
func Sint64ToUint64(x int64) uint64 {
	return uint64(x)
}

// Generate draws k cryptographically random bytes and interprets them
// as a big-endian unsigned integer, returned as a uint64. k outside
// [1,8] is treated as 8; k<8 zero-pads the high-order bytes. Used for node_id and
// run_id, both 8 bytes wide.
func Generate(k int) (uint64, error) {
	if k <= 0 {
		k = 8
	}
	if k > 8 {
		k = 8
	}
	buf := make([]byte, 8)
	if _, err := rand.Read(buf[8-k:]); err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(buf), nil
}

// GenerateID draws a random 8-byte node/run id. Collisions against the
// store are the caller's responsibility to detect and retry on; the
// id space (2^64) makes collision astronomically unlikely, so this
// never retries internally.
func GenerateID() (uint64, error) {
	return Generate(8)
}
