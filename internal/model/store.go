package model

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
)

var (
	// ErrNotFound means the store holds no artifact for the ticker.
	ErrNotFound = errors.New("model artifact not found")
	// ErrStoreUnavailable means the store itself could not be read.
	ErrStoreUnavailable = errors.New("model store unavailable")
	// ErrInvalidArtifact means an artifact exists but does not decode or validate.
	// It wraps ErrNotFound: a broken artifact resolves like a missing one.
	ErrInvalidArtifact = fmt.Errorf("%w: invalid artifact", ErrNotFound)
)

// artifactSuffix follows the training job's "<TICKER>_best_model" naming.
const artifactSuffix = "_best_model.json"

var tickerPattern = regexp.MustCompile(`^[A-Z0-9.^=\-]{1,16}$`)

// Store loads read-only model artifacts by ticker.
type Store interface {
	Load(ctx context.Context, ticker string) (*Network, error)
}

// FileStore reads artifacts from a flat directory.
type FileStore struct {
	dir string
}

// NewFileStore returns a store rooted at dir. The directory may not exist yet;
// every load then reports ErrNotFound.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the artifact path for ticker.
func (s *FileStore) Path(ticker string) string {
	return filepath.Join(s.dir, ticker+artifactSuffix)
}

// Load reads and validates the artifact for ticker.
func (s *FileStore) Load(ctx context.Context, ticker string) (*Network, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !tickerPattern.MatchString(ticker) {
		return nil, fmt.Errorf("%w: invalid ticker %q", ErrNotFound, ticker)
	}

	raw, err := os.ReadFile(s.Path(ticker))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, ticker)
		}
		return nil, fmt.Errorf("%w: read %s: %v", ErrStoreUnavailable, ticker, err)
	}

	var n Network
	if err := json.Unmarshal(raw, &n); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", ErrInvalidArtifact, ticker, err)
	}
	if err := n.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidArtifact, ticker, err)
	}
	if n.Ticker == "" {
		n.Ticker = ticker
	}
	return &n, nil
}

// Save writes n as ticker's artifact, creating the directory when needed.
func (s *FileStore) Save(ticker string, n *Network) error {
	if err := n.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", s.dir, err)
	}
	raw, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("encode %s: %w", ticker, err)
	}
	return os.WriteFile(s.Path(ticker), raw, 0o644)
}
