// Package assets stores uploaded concern photos on local disk.
package assets

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// URLPrefix is the path under which stored assets are served.
const URLPrefix = "/uploads/"

var ErrUnsupportedType = errors.New("only JPEG, PNG, GIF and WebP images are allowed")

var imageExt = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Asset describes a stored file.
type Asset struct {
	URL         string `json:"url"`
	PublicID    string `json:"public_id"`
	ContentType string `json:"-"`
	Size        int64  `json:"-"`
}

// DiskStore writes assets as <public_id><ext> under a directory.
type DiskStore struct {
	dir     string
	baseURL string
	logger  *zap.Logger
}

// NewDiskStore creates dir if needed. baseURL is prepended to returned URLs
// and may be empty for host-relative URLs.
func NewDiskStore(dir, baseURL string, logger *zap.Logger) (*DiskStore, error) {
	if dir == "" {
		return nil, errors.New("upload directory is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating upload dir %s: %w", dir, err)
	}
	return &DiskStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/"), logger: logger}, nil
}

// Dir returns the directory assets are written to.
func (s *DiskStore) Dir() string { return s.dir }

// Save sniffs the content type of r, rejects non-images, and writes the
// content to a new file.
func (s *DiskStore) Save(ctx context.Context, name string, r io.Reader) (Asset, error) {
	br := bufio.NewReaderSize(r, 512)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return Asset{}, fmt.Errorf("reading %s: %w", name, err)
	}
	if len(head) == 0 {
		return Asset{}, fmt.Errorf("reading %s: empty file", name)
	}
	contentType := http.DetectContentType(head)
	ext, ok := imageExt[contentType]
	if !ok {
		return Asset{}, ErrUnsupportedType
	}

	id := uuid.NewString()
	final := filepath.Join(s.dir, id+ext)
	tmp, err := os.CreateTemp(s.dir, ".upload-*")
	if err != nil {
		return Asset{}, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, readerWithContext(ctx, br))
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return Asset{}, fmt.Errorf("writing %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), final); err != nil {
		return Asset{}, fmt.Errorf("storing %s: %w", name, err)
	}

	s.logger.Info("asset stored",
		zap.String("public_id", id),
		zap.String("original_name", name),
		zap.String("content_type", contentType),
		zap.Int64("size", n),
	)
	return Asset{
		URL:         s.baseURL + URLPrefix + id + ext,
		PublicID:    id,
		ContentType: contentType,
		Size:        n,
	}, nil
}

// Handler serves stored assets. Mount it at URLPrefix.
func (s *DiskStore) Handler() http.Handler {
	return http.StripPrefix(URLPrefix, http.FileServer(http.Dir(s.dir)))
}

type ctxReader struct {
	ctx context.Context
	r   io.Reader
}

func (c ctxReader) Read(p []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(p)
}

func readerWithContext(ctx context.Context, r io.Reader) io.Reader {
	return ctxReader{ctx: ctx, r: r}
}
