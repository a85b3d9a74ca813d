package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog/log"
)

const fetchTimeout = 30 * time.Second

// Load reads and validates a forest artifact from a local path or an
// http(s) URL. wantSHA256, when non-empty, must match the hex SHA-256 of
// the raw artifact bytes; a mismatch rejects the artifact before parsing.
func Load(source, wantSHA256 string) (*Forest, error) {
	var (
		data []byte
		err  error
	)

	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		data, err = fetch(source)
	} else {
		data, err = os.ReadFile(source)
	}
	if err != nil {
		return nil, fmt.Errorf("read model artifact %s: %w", source, err)
	}

	if wantSHA256 != "" {
		sum := sha256.Sum256(data)
		got := hex.EncodeToString(sum[:])
		if !strings.EqualFold(got, wantSHA256) {
			return nil, fmt.Errorf("model artifact checksum mismatch: got %s", got)
		}
	}

	var forest Forest
	if err := json.Unmarshal(data, &forest); err != nil {
		return nil, fmt.Errorf("parse model artifact: %w", err)
	}
	if err := forest.Validate(); err != nil {
		return nil, fmt.Errorf("invalid model artifact: %w", err)
	}

	log.Info().
		Str("source", source).
		Str("version", forest.Meta.Version).
		Int("trees", len(forest.Trees)).
		Int("features", forest.FeatureCount).
		Msg("model artifact loaded")

	return &forest, nil
}

func fetch(url string) ([]byte, error) {
	client := resty.New().SetTimeout(fetchTimeout)

	resp, err := client.R().Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetch model: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("fetch model: unexpected status %s", resp.Status())
	}
	return resp.Body(), nil
}
