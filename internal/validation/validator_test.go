package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/chapterforge/chapterforge-server/internal/errors"
)

type transcriptRequest struct {
	VideoURL string `json:"videoUrl" validate:"required,url"`
	Key      string `json:"key,omitempty" validate:"omitempty,min=8"`
}

func TestValidate_Passes(t *testing.T) {
	v := New()
	err := v.Validate(transcriptRequest{VideoURL: "https://youtu.be/dQw4w9WgXcQ"})
	assert.NoError(t, err)
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	v := New()
	err := v.Validate(transcriptRequest{})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))
	assert.Equal(t, domainerrors.CodeValidation, domainErr.Code)

	fields, ok := domainErr.Details.(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "is required", fields["videoUrl"])
}

func TestValidate_ParamMessages(t *testing.T) {
	v := New()
	err := v.Validate(transcriptRequest{VideoURL: "https://youtu.be/x", Key: "short"})
	require.Error(t, err)

	var domainErr *domainerrors.Error
	require.True(t, domainerrors.As(err, &domainErr))

	fields := domainErr.Details.(map[string]string)
	assert.Equal(t, "must be at least 8 characters", fields["key"])
}
