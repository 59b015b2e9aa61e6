package util

import (
	"crypto/rand"
	"encoding/hex"
)

// idBytes is the entropy per ID; 12 bytes keeps the hex form short enough
// for URLs and log lines.
const idBytes = 12

// NewID returns a random hex ID for entities (projects, sessions, messages).
func NewID() string {
	b := make([]byte, idBytes)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
