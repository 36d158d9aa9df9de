// Package capture stores images uploaded by the kitchen camera
package capture

import (
	"context"
	stderrors "errors"
	"io"

	"github.com/pantrysense/v2/internal/domain/capture"
	"github.com/pantrysense/v2/internal/ports/inbound"
	"github.com/pantrysense/v2/internal/ports/outbound"
	"github.com/pantrysense/v2/pkg/errors"
	"go.uber.org/zap"
)

const defaultListLimit = 50

// Service implements inbound.CaptureService
type Service struct {
	objects outbound.ObjectStore
	repo    outbound.CaptureRepository
	logger  *zap.Logger
}

// NewService creates a new capture service
func NewService(objects outbound.ObjectStore, repo outbound.CaptureRepository, logger *zap.Logger) *Service {
	return &Service{
		objects: objects,
		repo:    repo,
		logger:  logger.Named("capture-service"),
	}
}

// Upload validates the image, stores the object and then its metadata.
// If the metadata cannot be saved the object is removed again.
func (s *Service) Upload(ctx context.Context, filename string, size int64, body io.ReadSeeker) (*capture.Capture, error) {
	c, err := capture.New(filename, size)
	if err != nil {
		return nil, uploadError(err)
	}

	url, err := s.objects.Put(ctx, c.ObjectKey, c.ContentType, body)
	if err != nil {
		return nil, errors.NewExternalServiceError("object store", err)
	}
	c.URL = url

	if err := s.repo.Save(ctx, c); err != nil {
		if delErr := s.objects.Delete(ctx, c.ObjectKey); delErr != nil {
			s.logger.Error("Failed to remove orphaned capture object",
				zap.String("key", c.ObjectKey),
				zap.Error(delErr),
			)
		}
		return nil, errors.NewDatabaseError("save capture", err)
	}

	s.logger.Info("Capture stored",
		zap.String("id", c.ID),
		zap.String("key", c.ObjectKey),
		zap.Int64("size", c.Size),
	)
	return c, nil
}

// List returns the newest captures first
func (s *Service) List(ctx context.Context, limit int) ([]*capture.Capture, error) {
	if limit <= 0 || limit > defaultListLimit {
		limit = defaultListLimit
	}
	captures, err := s.repo.List(ctx, limit)
	if err != nil {
		return nil, errors.NewDatabaseError("list captures", err)
	}
	return captures, nil
}

// Delete removes the object and its metadata
func (s *Service) Delete(ctx context.Context, id string) error {
	c, err := s.repo.FindByID(ctx, id)
	if stderrors.Is(err, capture.ErrCaptureNotFound) {
		return errors.NewNotFoundError(errors.CodeCaptureNotFound, "Capture not found", id).WithCause(err)
	}
	if err != nil {
		return errors.NewDatabaseError("find capture", err)
	}

	if err := s.objects.Delete(ctx, c.ObjectKey); err != nil {
		return errors.NewExternalServiceError("object store", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return errors.NewDatabaseError("delete capture", err)
	}

	s.logger.Info("Capture deleted", zap.String("id", id))
	return nil
}

func uploadError(err error) error {
	switch {
	case stderrors.Is(err, capture.ErrTooLarge):
		return errors.NewAppError(errors.CodePayloadTooLarge, "Image too large", err.Error()).WithCause(err)
	case stderrors.Is(err, capture.ErrNoFile):
		return errors.NewBadRequestError("No image file provided").WithCause(err)
	case stderrors.Is(err, capture.ErrUnsupportedType):
		return errors.NewBadRequestError("File type not allowed").WithCause(err)
	default:
		return errors.NewBadRequestError("Invalid upload").WithCause(err)
	}
}

var _ inbound.CaptureService = (*Service)(nil)
