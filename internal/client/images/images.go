// Package images uploads task attachments to object storage under a
// per-user path and removes them again.
package images

import (
	"context"
	"fmt"
	"mime"
	"net/http"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/filex"
	"github.com/dmitrijs2005/gophtasks/internal/logging"
	"github.com/dmitrijs2005/gophtasks/internal/netx"
)

// test seams
var (
	now            = time.Now
	uploadToURL    = netx.UploadToPresignedURL
	readAttachment = filex.ReadAttachment
)

var whitespace = regexp.MustCompile(`\s+`)

// Storage is the object-storage side of the backend.
type Storage interface {
	PrepareUpload(ctx context.Context, path, contentType string) (*models.UploadTicket, error)
	RemoveObjects(ctx context.Context, paths []string) error
}

// Result links an uploaded object to a task.
type Result struct {
	PublicURL   string
	StoragePath string
}

type Handler struct {
	storage Storage
	logger  logging.Logger

	mu         sync.Mutex
	lastMillis int64
}

func NewHandler(s Storage, l logging.Logger) *Handler {
	return &Handler{storage: s, logger: l.With("module", "images")}
}

// StoragePath builds "<email>/<name>-<unix ms>" with whitespace runs in the
// file name replaced by "_".
func StoragePath(email, fileName string, millis int64) string {
	return fmt.Sprintf("%s/%s-%d", email, whitespace.ReplaceAllString(fileName, "_"), millis)
}

// stamp returns a strictly increasing millisecond timestamp so two uploads
// of the same file never share a path.
func (h *Handler) stamp() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()

	ms := now().UnixMilli()
	if ms <= h.lastMillis {
		ms = h.lastMillis + 1
	}
	h.lastMillis = ms
	return ms
}

func contentType(name string, data []byte) string {
	if ct := mime.TypeByExtension(filepath.Ext(name)); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

// Upload stores the local file under the owner's prefix. Callers decide
// what a failure means; the task editor proceeds without an image.
func (h *Handler) Upload(ctx context.Context, file string, email string) (*Result, error) {
	name, data, err := readAttachment(file)
	if err != nil {
		return nil, err
	}

	path := StoragePath(email, name, h.stamp())
	h.logger.Info(ctx, "uploading image", "path", path)

	ct := contentType(name, data)
	ticket, err := h.storage.PrepareUpload(ctx, path, ct)
	if err != nil {
		return nil, fmt.Errorf("prepare upload: %w", err)
	}

	if err := uploadToURL(ctx, ticket.UploadURL, data, ct); err != nil {
		return nil, fmt.Errorf("upload: %w", err)
	}

	return &Result{PublicURL: ticket.PublicURL, StoragePath: ticket.Path}, nil
}

// Remove deletes stored objects by path.
func (h *Handler) Remove(ctx context.Context, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	h.logger.Info(ctx, "removing images", "paths", paths)
	return h.storage.RemoveObjects(ctx, paths)
}
