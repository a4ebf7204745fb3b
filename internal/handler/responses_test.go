package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/osse101/liveops/internal/domain"
)

func TestMapServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"validation", domain.NewValidationError(domain.ErrInvalidInput, nil), http.StatusBadRequest, ErrMsgInvalidRequestSummary},
		{"wrapped not found", fmt.Errorf("load: %w", domain.ErrEventNotFound), http.StatusNotFound, ErrMsgEventNotFound},
		{"progress not found", domain.ErrProgressNotFound, http.StatusNotFound, ErrMsgProgressNotFound},
		{"completion not found", domain.ErrCompletionNotFound, http.StatusNotFound, ErrMsgCompletionNotFound},
		{"conflict", domain.ErrEventAlreadyExists, http.StatusConflict, ErrMsgEventExists},
		{"inactive", domain.ErrEventInactive, http.StatusConflict, ErrMsgEventInactive},
		{"grant", &domain.GrantError{Err: assert.AnError}, http.StatusBadGateway, ErrMsgGrantFailed},
		{"store", domain.NewStoreError("op", assert.AnError), http.StatusServiceUnavailable, ErrMsgStoreUnavailable},
		{"other", assert.AnError, http.StatusInternalServerError, ErrMsgGenericServerError},
		{"nil", nil, http.StatusInternalServerError, ErrMsgGenericServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, msg := mapServiceError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.msg, msg)
		})
	}
}

func TestPutBuffer_DropsOversized(t *testing.T) {
	buf := getBuffer()
	buf.Grow(128 << 10)
	putBuffer(buf)

	next := getBuffer()
	defer putBuffer(next)
	assert.Equal(t, 0, next.Len())
}
