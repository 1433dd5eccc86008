package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Metadata describes an ingested job posting.
type Metadata struct {
	URL       string   `json:"url,omitempty"`
	Timestamp string   `json:"timestamp"`
	Hash      string   `json:"hash"`
	Length    int      `json:"length"`
	Platform  Platform `json:"platform,omitempty"`
}

// NewMetadata stamps content with the current time and its SHA-256 digest.
func NewMetadata(content string, url string) *Metadata {
	sum := sha256.Sum256([]byte(content))
	return &Metadata{
		URL:       url,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Hash:      hex.EncodeToString(sum[:]),
		Length:    len([]rune(content)),
	}
}
