package response

import (
	"encoding/json/v2"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chapterforge/chapterforge-server/internal/errors"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestOK_WritesPayloadWithoutEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, map[string]any{"chapters": "00:00 Introduction"}, testLogger())

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "00:00 Introduction", body["chapters"])
	assert.NotContains(t, body, "data")
	assert.NotContains(t, body, "success")
}

func TestError_CarriesRecoverableFlag(t *testing.T) {
	rec := httptest.NewRecorder()
	Error(rec, http.StatusTooManyRequests, "slow down", true, testLogger())

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)

	var body ErrorBody
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "slow down", body.Error)
	assert.True(t, body.ShouldUseLocalGeneration)
}

func TestDomainError(t *testing.T) {
	tests := []struct {
		name            string
		err             error
		wantStatus      int
		wantRecoverable bool
	}{
		{
			name:            "missing transcript is a client error",
			err:             errors.MissingTranscript("transcript is required"),
			wantStatus:      http.StatusBadRequest,
			wantRecoverable: false,
		},
		{
			name:            "rate limited suggests local fallback",
			err:             errors.RateLimited("completion provider throttled the request"),
			wantStatus:      http.StatusTooManyRequests,
			wantRecoverable: true,
		},
		{
			name:            "invalid credential suggests local fallback",
			err:             errors.CredentialInvalid("completion credential rejected"),
			wantStatus:      http.StatusUnauthorized,
			wantRecoverable: true,
		},
		{
			name:            "uncoded error becomes recoverable 500",
			err:             io.ErrUnexpectedEOF,
			wantStatus:      http.StatusInternalServerError,
			wantRecoverable: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			DomainError(rec, tt.err, testLogger())

			assert.Equal(t, tt.wantStatus, rec.Code)

			var body ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tt.wantRecoverable, body.ShouldUseLocalGeneration)
			assert.NotEmpty(t, body.Error)
		})
	}
}
