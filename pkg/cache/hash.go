package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex-encoded SHA-256 of data. Snapshot identity in the
// pipeline is this hash over the sorted snapshot encoding, so two inputs
// with the same people and edges in any order share cache entries.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds a namespaced key "<stage>:<hex>" by streaming the JSON
// encoding of each part into one SHA-256. The stage prefix keeps layout and
// artifact entries apart even if their hashed parts ever collided, and
// FileCache uses it as the per-stage directory.
func hashKey(stage string, parts ...any) string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, p := range parts {
		// Encoding the key parts cannot fail: they are strings and flat
		// option structs.
		_ = enc.Encode(p)
	}
	return stage + ":" + hex.EncodeToString(h.Sum(nil))
}
