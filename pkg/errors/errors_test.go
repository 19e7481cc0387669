package errors_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	pkgerrors "github.com/agentstation/dogsync/pkg/errors"
)

func TestNew(t *testing.T) {
	err := pkgerrors.New("test error")
	assert.NotNil(t, err)
	assert.Equal(t, "test error", err.Error())
}

func TestRemoteUnavailableError(t *testing.T) {
	base := errors.New("dial tcp: connection refused")
	err := pkgerrors.NewRemoteUnavailableError("dogs", "listing failed", base)

	assert.Contains(t, err.Error(), "dogs")
	assert.Contains(t, err.Error(), "connection refused")
	assert.True(t, pkgerrors.IsRemoteUnavailable(err))
	assert.True(t, pkgerrors.IsFatal(err))
	assert.ErrorIs(t, err, base)
	assert.Equal(t, pkgerrors.KindRemoteUnavailable, pkgerrors.Kind(err))
}

func TestSourceError(t *testing.T) {
	t.Run("per item", func(t *testing.T) {
		err := pkgerrors.NewSourceFetchError("fetch", "https://images.dog.ceo/x.jpg", errors.New("timeout"))
		assert.ErrorIs(t, err, pkgerrors.ErrSourceFetchFailed)
		assert.NotErrorIs(t, err, pkgerrors.ErrSourceUnavailable)
		assert.False(t, pkgerrors.IsFatal(err))
		assert.Equal(t, pkgerrors.KindSourceFetchFailed, pkgerrors.Kind(err))
	})

	t.Run("fatal", func(t *testing.T) {
		err := pkgerrors.NewSourceUnavailableError("list breeds", errors.New("503"))
		assert.ErrorIs(t, err, pkgerrors.ErrSourceUnavailable)
		assert.True(t, pkgerrors.IsFatal(err))
		assert.Equal(t, "source list breeds failed: 503", err.Error())
	})
}

func TestRemoteWriteError(t *testing.T) {
	err := pkgerrors.NewRemoteWriteError("put", "dogs/akita/image-1", errors.New("insufficient storage"))
	wrapped := fmt.Errorf("executing create: %w", err)

	assert.ErrorIs(t, wrapped, pkgerrors.ErrRemoteWriteFailed)
	assert.Equal(t, pkgerrors.KindRemoteWriteFailed, pkgerrors.Kind(wrapped))
	assert.Equal(t, "remote put of dogs/akita/image-1 failed: insufficient storage", err.Error())
}

func TestReportPersistError(t *testing.T) {
	err := pkgerrors.NewReportPersistError("/ro/result.json", errors.New("read-only file system"))
	assert.ErrorIs(t, err, pkgerrors.ErrReportPersistFailed)
	assert.Equal(t, pkgerrors.KindReportPersistFailed, pkgerrors.Kind(err))
}

func TestAPIError(t *testing.T) {
	tests := []struct {
		status int
		target error
	}{
		{http.StatusNotFound, pkgerrors.ErrNotFound},
		{http.StatusConflict, pkgerrors.ErrAlreadyExists},
		{http.StatusUnauthorized, pkgerrors.ErrUnauthorized},
		{http.StatusForbidden, pkgerrors.ErrUnauthorized},
		{http.StatusTooManyRequests, pkgerrors.ErrRateLimited},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := pkgerrors.NewAPIError("yandex.disk", tt.status, "boom")
			assert.ErrorIs(t, err, tt.target)
			assert.Contains(t, err.Error(), "yandex.disk")
		})
	}

	t.Run("server error matches nothing", func(t *testing.T) {
		err := pkgerrors.NewAPIError("dog.ceo", http.StatusBadGateway, "bad gateway")
		assert.False(t, pkgerrors.IsNotFound(err))
		assert.False(t, pkgerrors.IsUnauthorized(err))
	})
}

func TestValidationError(t *testing.T) {
	t.Run("with field", func(t *testing.T) {
		err := pkgerrors.NewValidationError("MAX_BREED_IMAGES", -1, "must be non-negative")
		assert.Equal(t, "validation failed for field MAX_BREED_IMAGES: must be non-negative", err.Error())
		assert.True(t, pkgerrors.IsValidationError(err))
		assert.True(t, pkgerrors.IsFatal(err))
	})

	t.Run("without field", func(t *testing.T) {
		err := &pkgerrors.ValidationError{Message: "invalid configuration"}
		assert.Equal(t, "validation failed: invalid configuration", err.Error())
	})
}

func TestKindUnknownAndNil(t *testing.T) {
	assert.Equal(t, "", pkgerrors.Kind(nil))
	assert.Equal(t, pkgerrors.KindUnknown, pkgerrors.Kind(errors.New("other")))
}
