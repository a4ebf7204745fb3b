package server

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSecurityHeaders_OnEveryRouterResponse(t *testing.T) {
	f := newRouterFixture(t)

	tests := []struct {
		name      string
		method    string
		path      string
		authed    bool
		wantCode  int
		requestID bool
	}{
		{"health check", http.MethodGet, "/healthz", false, http.StatusOK, false},
		{"public calendar feed", http.MethodGet, "/api/v1/events/calendar.ics", false, http.StatusOK, true},
		{"active events", http.MethodGet, "/api/v1/events/active?tz=Asia/Tokyo", true, http.StatusOK, true},
		{"rejected without key", http.MethodPost, "/api/v1/admin/sweep", false, http.StatusUnauthorized, true},
		{"unknown event", http.MethodGet, "/api/v1/events/missing", true, http.StatusNotFound, true},
		{"bad display zone", http.MethodGet, "/api/v1/events/upcoming?tz=Nowhere/Land", true, http.StatusBadRequest, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.do(t, tt.method, tt.path, nil, tt.authed)

			assert.Equal(t, tt.wantCode, w.Code)
			h := w.Header()
			assert.Equal(t, HeaderValueNoSniff, h.Get(HeaderContentType))
			assert.Equal(t, HeaderValueSameOrigin, h.Get(HeaderFrameOptions))
			assert.Equal(t, HeaderValueXSSBlock, h.Get(HeaderXSSProtection))
			assert.Equal(t, HeaderValueReferrerStrictOrigin, h.Get(HeaderReferrerPolicy))
			if tt.requestID {
				assert.NotEmpty(t, h.Get(HeaderRequestID))
			} else {
				assert.Empty(t, h.Get(HeaderRequestID), "quiet paths are not request-logged")
			}
		})
	}
}
