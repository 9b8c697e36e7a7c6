package blobstore

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/hupe1980/pointloc/internal/mmap"
)

// LocalStore opens snapshot files below a root directory.
type LocalStore struct {
	root   string
	logger *slog.Logger
}

// NewLocalStore creates a LocalStore rooted at root. A nil logger discards
// output.
func NewLocalStore(root string, logger *slog.Logger) *LocalStore {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LocalStore{root: root, logger: logger}
}

// Root returns the store directory.
func (s *LocalStore) Root() string { return s.root }

// Open maps the named file into memory with a sequential access hint.
func (s *LocalStore) Open(ctx context.Context, name string) (Blob, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !filepath.IsLocal(name) {
		return nil, fmt.Errorf("blobstore: invalid blob name %q", name)
	}

	path := filepath.Join(s.root, name)
	m, err := mmap.Open(path)
	if err != nil {
		return nil, err
	}
	if err := m.Advise(mmap.Sequential); err != nil {
		s.logger.WarnContext(ctx, "madvise failed", slog.String("path", path), slog.Any("error", err))
	}

	s.logger.DebugContext(ctx, "blob mapped", slog.String("path", path), slog.Int64("size", m.Size()))
	return &localBlob{m: m}, nil
}

type localBlob struct {
	m *mmap.Mapping
}

func (b *localBlob) ReadAt(p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	return b.m.ReadAt(p, off)
}

func (b *localBlob) Close() error { return b.m.Close() }

func (b *localBlob) Size() int64 { return b.m.Size() }

func (b *localBlob) Bytes() ([]byte, error) {
	data := b.m.Bytes()
	if data == nil && b.m.Size() > 0 {
		return nil, mmap.ErrClosed
	}
	return data, nil
}
