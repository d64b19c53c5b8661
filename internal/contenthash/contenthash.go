// Package contenthash computes the content address used as the dedup and
// storage key for every ingested image.
package contenthash

import (
	"crypto/sha256"
	"encoding/hex"
)

// Sum returns the lowercase hex SHA-256 digest of data. The digest doubles
// as the storage key, so the algorithm must never change for a live system:
// switching it would orphan every existing canonical object and metadata row.
func Sum(data []byte) string {
	digest := sha256.Sum256(data)
	return hex.EncodeToString(digest[:])
}
