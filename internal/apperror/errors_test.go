package apperror_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"catalog/internal/apperror"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		kind apperror.Kind
		want int
	}{
		{apperror.InvalidInput, http.StatusBadRequest},
		{apperror.AuthRejected, http.StatusUnauthorized},
		{apperror.RouteNotFound, http.StatusNotFound},
		{apperror.ResourceNotFound, http.StatusNotFound},
		{apperror.UniqueConstraint, http.StatusUnprocessableEntity},
		{apperror.MalformedBody, http.StatusUnprocessableEntity},
		{apperror.StorageFailure, http.StatusInternalServerError},
		{apperror.Internal, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.kind.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, apperror.Status(tt.kind))
		})
	}
}

func TestKindOfWrappedChain(t *testing.T) {
	base := apperror.New(apperror.ResourceNotFound, "Product with ID 7 not found")
	wrapped := fmt.Errorf("service: %w", base)

	assert.Equal(t, apperror.ResourceNotFound, apperror.KindOf(wrapped))
	assert.Equal(t, apperror.Internal, apperror.KindOf(errors.New("boom")))
}

func TestPublicMessageHidesCause(t *testing.T) {
	cause := errors.New("pq: connection refused on 10.0.0.3")
	err := apperror.Wrap(apperror.StorageFailure, "Failed to create product", cause)

	assert.Equal(t, "Failed to create product", apperror.PublicMessage(err))
	assert.Contains(t, err.Error(), "connection refused")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Internal Server Error", apperror.PublicMessage(errors.New("raw")))
}

func TestDetailsOf(t *testing.T) {
	validation := apperror.New(apperror.InvalidInput, "Validation failed")
	validation.Details = map[string]string{"name": "required"}

	assert.Equal(t, map[string]string{"name": "required"}, apperror.DetailsOf(fmt.Errorf("create: %w", validation)))
	assert.Nil(t, apperror.DetailsOf(apperror.New(apperror.InvalidInput, "bad")))
	assert.Nil(t, apperror.DetailsOf(errors.New("boom")))
}
