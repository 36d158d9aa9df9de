// Package capture models images uploaded by the kitchen camera
package capture

import (
	"errors"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// MaxImageBytes bounds a single upload
const MaxImageBytes = 16 << 20

var allowedExtensions = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".webp": "image/webp",
}

var (
	ErrNoFile           = errors.New("no image file provided")
	ErrUnsupportedType  = errors.New("file type not allowed")
	ErrTooLarge         = errors.New("image exceeds the 16 MiB limit")
	ErrCaptureNotFound  = errors.New("capture not found")
	ErrDuplicateCapture = errors.New("capture already exists")
)

// Capture is the metadata kept for one stored image
type Capture struct {
	ID          string    `json:"id"`
	Filename    string    `json:"filename"`
	ObjectKey   string    `json:"objectKey"`
	URL         string    `json:"url"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	CreatedAt   time.Time `json:"createdAt"`
}

// New validates an upload and prepares its metadata. The object key is
// derived from a fresh id so uploads never overwrite each other.
func New(filename string, size int64) (*Capture, error) {
	if strings.TrimSpace(filename) == "" {
		return nil, ErrNoFile
	}
	ext := strings.ToLower(filepath.Ext(filename))
	contentType, ok := allowedExtensions[ext]
	if !ok {
		return nil, ErrUnsupportedType
	}
	if size > MaxImageBytes {
		return nil, ErrTooLarge
	}

	id := uuid.New().String()
	return &Capture{
		ID:          id,
		Filename:    filepath.Base(filename),
		ObjectKey:   "captures/" + id + ext,
		ContentType: contentType,
		Size:        size,
		CreatedAt:   time.Now().UTC(),
	}, nil
}
