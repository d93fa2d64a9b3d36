// internal/adapters/photostore/store.go

// Package photostore implements the shared photo asset store on the local
// filesystem. All assets live under one configurable root, one directory
// per category, and records only ever hold root-relative paths so the
// whole tree can be moved or mounted elsewhere.
package photostore

import (
	"context"
	"encoding/base64"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/anvikram/stocktrack-be/internal/core/domain"
	"github.com/anvikram/stocktrack-be/internal/core/ports"
	"github.com/anvikram/stocktrack-be/internal/pkg/imaging"
)

// Store persists photos under a single asset root.
type Store struct {
	root   string
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.PhotoStore = (*Store)(nil)

// NewStore creates the asset root and its category directories.
func NewStore(root string, logger *slog.Logger) (*Store, error) {
	for _, c := range domain.Categories() {
		if err := os.MkdirAll(filepath.Join(root, string(c)), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create asset directory %s: %w", c, err)
		}
	}
	return &Store{
		root:   root,
		logger: logger.With(slog.String("component", "photostore")),
		now:    time.Now,
	}, nil
}

// Root returns the asset root directory.
func (s *Store) Root() string {
	return s.root
}

// Persist decodes a data:<mime>;base64,<payload> envelope, compresses the
// image and writes it under the category directory. The file hits disk
// before any record references the returned path; a crash in between
// leaves an orphan for Sweep, never a dangling reference.
func (s *Store) Persist(ctx context.Context, category domain.PhotoCategory, ownerKey, payload string) (string, error) {
	data, err := decodePayload(payload)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrProcessingFailed, err)
	}

	data = imaging.Compress(data)

	stamp := s.now().Format("20060102_150405")
	base := fmt.Sprintf("%s_%s", sanitizeKey(ownerKey), stamp)

	// O_EXCL guards two writes landing on the same second for one owner.
	for attempt := 0; ; attempt++ {
		name := base + ".jpg"
		if attempt > 0 {
			name = fmt.Sprintf("%s_%d.jpg", base, attempt)
		}
		abs := filepath.Join(s.root, string(category), name)

		f, err := os.OpenFile(abs, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if os.IsExist(err) {
			continue
		}
		if err != nil {
			return "", fmt.Errorf("failed to create asset file: %w", err)
		}

		if _, err := f.Write(data); err != nil {
			f.Close()
			os.Remove(abs)
			return "", fmt.Errorf("failed to write asset file: %w", err)
		}
		if err := f.Close(); err != nil {
			os.Remove(abs)
			return "", fmt.Errorf("failed to close asset file: %w", err)
		}

		rel := string(category) + "/" + name
		s.logger.DebugContext(ctx, "photo persisted",
			slog.String("path", rel),
			slog.Int("bytes", len(data)))
		return rel, nil
	}
}

// Remove deletes the file behind a relative path. Missing files are fine;
// the reference was the thing being cleaned up.
func (s *Store) Remove(ctx context.Context, relPath string) error {
	abs, err := s.resolve(relPath)
	if err != nil {
		return err
	}
	if err := os.Remove(abs); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove asset: %w", err)
	}
	return nil
}

// Walk visits every persisted asset, category by category.
func (s *Store) Walk(ctx context.Context, visit func(relPath string) error) error {
	for _, c := range domain.Categories() {
		dir := filepath.Join(s.root, string(c))
		err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				if os.IsNotExist(err) {
					return nil
				}
				return err
			}
			if d.IsDir() {
				return nil
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			rel, err := filepath.Rel(s.root, path)
			if err != nil {
				return err
			}
			return visit(filepath.ToSlash(rel))
		})
		if err != nil {
			return fmt.Errorf("failed to walk %s: %w", c, err)
		}
	}
	return nil
}

// resolve maps a relative path onto the root, rejecting traversal out of it.
func (s *Store) resolve(relPath string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(relPath))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("%w: invalid asset path %q", domain.ErrValidation, relPath)
	}
	return filepath.Join(s.root, clean), nil
}

// decodePayload strips the data URI envelope and decodes the base64 body.
// The mime prefix is informational only; the bytes decide the format.
func decodePayload(payload string) ([]byte, error) {
	body := payload
	if domain.IsEncodedPayload(payload) {
		_, after, found := strings.Cut(payload, ",")
		if !found {
			return nil, fmt.Errorf("malformed data payload")
		}
		body = after
	}

	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, fmt.Errorf("invalid base64 payload: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty payload")
	}
	return data, nil
}

// sanitizeKey reduces an owner key to filename-safe characters.
func sanitizeKey(key string) string {
	if key == "" {
		return "photo"
	}
	var b strings.Builder
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '-' || r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}
