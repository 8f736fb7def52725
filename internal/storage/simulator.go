package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Simulator is the no-infrastructure storage backend: it accepts the payload
// and returns a deterministic URL without keeping the bytes. Used whenever no
// bucket is configured; the wallet is process-lifetime state anyway.
type Simulator struct {
	bucket   string
	endpoint string
}

func NewSimulator(bucket, endpoint string) *Simulator {
	return &Simulator{
		bucket:   strings.TrimSpace(bucket),
		endpoint: strings.TrimSpace(endpoint),
	}
}

func (s *Simulator) UploadPhoto(accountID string, photoID string, imageData []byte) (string, error) {
	if len(imageData) == 0 {
		return "", fmt.Errorf("empty image data")
	}

	sum := sha256.Sum256([]byte(accountID + ":" + photoID))
	key := hex.EncodeToString(sum[:])

	ep := s.endpoint
	if ep == "" {
		ep = "https://storage.example.invalid"
	}
	bucket := s.bucket
	if bucket == "" {
		bucket = "snapwallet"
	}

	return fmt.Sprintf("%s/%s/photos/%s.png", strings.TrimRight(ep, "/"), bucket, key), nil
}
