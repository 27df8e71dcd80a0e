package store

import (
	"encoding/hex"

	"github.com/google/uuid"
)

// GenerateID returns a 32-character hex identifier built from a UUIDv7: a
// 48-bit millisecond timestamp followed by random bits. Unique with
// overwhelming probability; not a security token.
func GenerateID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return hex.EncodeToString(id[:])
}
