package capture

import (
	"bytes"
	"context"
	stderrors "errors"
	"testing"

	"github.com/pantrysense/v2/internal/domain/capture"
	"github.com/pantrysense/v2/pkg/errors"
	"github.com/pantrysense/v2/test/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newService(t *testing.T) (*Service, *testutils.MockObjectStore, *testutils.MockCaptureRepository) {
	objects := &testutils.MockObjectStore{}
	repo := &testutils.MockCaptureRepository{}
	return NewService(objects, repo, zaptest.NewLogger(t)), objects, repo
}

func TestUpload(t *testing.T) {
	svc, objects, repo := newService(t)
	body := bytes.NewReader([]byte("jpeg-bytes"))

	objects.On("Put", mock.Anything, mock.MatchedBy(func(key string) bool {
		return len(key) > len("captures/")
	}), "image/jpeg", body).Return("https://cdn.example.test/object", nil)
	repo.On("Save", mock.Anything, mock.AnythingOfType("*capture.Capture")).Return(nil)

	c, err := svc.Upload(context.Background(), "pantry.jpg", 10, body)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.test/object", c.URL)
	assert.Equal(t, "pantry.jpg", c.Filename)
	objects.AssertExpectations(t)
	repo.AssertExpectations(t)
}

func TestUpload_Rejects(t *testing.T) {
	tests := []struct {
		name     string
		filename string
		size     int64
		code     errors.ErrorCode
	}{
		{"no file", "", 0, errors.CodeBadRequest},
		{"bad type", "script.sh", 10, errors.CodeBadRequest},
		{"too large", "big.png", capture.MaxImageBytes + 1, errors.CodePayloadTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, objects, _ := newService(t)
			_, err := svc.Upload(context.Background(), tt.filename, tt.size, bytes.NewReader(nil))
			assert.Equal(t, tt.code, errors.GetCode(err))
			objects.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		})
	}
}

func TestUpload_RemovesObjectWhenSaveFails(t *testing.T) {
	svc, objects, repo := newService(t)
	objects.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("url", nil)
	objects.On("Delete", mock.Anything, mock.Anything).Return(nil)
	repo.On("Save", mock.Anything, mock.Anything).Return(stderrors.New("constraint"))

	_, err := svc.Upload(context.Background(), "a.png", 1, bytes.NewReader([]byte("x")))
	assert.Equal(t, errors.CodeDatabaseError, errors.GetCode(err))
	objects.AssertCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestUpload_ObjectStoreFailure(t *testing.T) {
	svc, objects, repo := newService(t)
	objects.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return("", stderrors.New("s3 down"))

	_, err := svc.Upload(context.Background(), "a.png", 1, bytes.NewReader([]byte("x")))
	assert.Equal(t, errors.CodeExternalServiceError, errors.GetCode(err))
	repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
}

func TestList_ClampsLimit(t *testing.T) {
	svc, _, repo := newService(t)
	captures := []*capture.Capture{testutils.NewFactory(3).Capture()}
	repo.On("List", mock.Anything, 50).Return(captures, nil).Twice()
	repo.On("List", mock.Anything, 5).Return(captures, nil).Once()

	for _, limit := range []int{0, 500, 5} {
		got, err := svc.List(context.Background(), limit)
		require.NoError(t, err)
		assert.Len(t, got, 1)
	}
	repo.AssertExpectations(t)
}

func TestDelete(t *testing.T) {
	svc, objects, repo := newService(t)
	c := testutils.NewFactory(4).Capture()
	repo.On("FindByID", mock.Anything, c.ID).Return(c, nil)
	repo.On("Delete", mock.Anything, c.ID).Return(nil)
	objects.On("Delete", mock.Anything, c.ObjectKey).Return(nil)

	require.NoError(t, svc.Delete(context.Background(), c.ID))
	repo.AssertExpectations(t)
	objects.AssertExpectations(t)
}

func TestDelete_NotFound(t *testing.T) {
	svc, _, repo := newService(t)
	repo.On("FindByID", mock.Anything, "missing").Return(nil, capture.ErrCaptureNotFound)

	err := svc.Delete(context.Background(), "missing")
	assert.Equal(t, errors.CodeCaptureNotFound, errors.GetCode(err))
}
