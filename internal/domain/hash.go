package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	m "ocdsmap.dev/pkg/ocdsmap/internal/model"
)

// ContentHash returns the hex SHA-256 of v's canonical JSON form. Object keys are
// sorted, so two documents with the same content hash equally whatever order their
// fields were written in.
func ContentHash(v m.Value) (string, error) {
	b, err := json.Marshal(m.ToPlain(v))
	if err != nil {
		return "", fmt.Errorf("canonical json: %w", err)
	}

	sum := sha256.Sum256(b)

	return hex.EncodeToString(sum[:]), nil
}
