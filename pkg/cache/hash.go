package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// Hash returns the hex SHA-256 of data. Image and label map hashes are
// computed with it, so equal content always maps to equal keys.
func Hash(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// hashKey builds "kind:sha256(json(parts))". Parts are JSON-encoded so that
// field order in the key options is part of the key.
func hashKey(kind string, parts ...any) string {
	data, _ := json.Marshal(parts) // validated scalars only
	return kind + ":" + Hash(data)
}
