package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"resham-cricketer/pkg/apperr"
)

func TestDriveLink(t *testing.T) {
	assert.NoError(t, DriveLink("https://drive.google.com/file/d/abc123/view?usp=sharing"))
	err := DriveLink("https://youtube.com/watch?v=x")
	assert.Error(t, err)
	appErr, ok := apperr.As(err)
	assert.True(t, ok)
	assert.Equal(t, apperr.CodeInvalidInput, appErr.Code)
}

func TestTitle(t *testing.T) {
	assert.NoError(t, Title("Cover Drive"))
	assert.Error(t, Title("   "))
	assert.Error(t, Title(strings.Repeat("x", MaxTitleLength+1)))
	assert.NoError(t, Title(strings.Repeat("x", MaxTitleLength)))
}

func TestDescription(t *testing.T) {
	assert.NoError(t, Description(""))
	assert.Error(t, Description(strings.Repeat("y", MaxDescriptionLength+1)))
}

func TestPassword(t *testing.T) {
	assert.Error(t, Password("12345"))
	assert.NoError(t, Password("123456"))
}

func TestEmail(t *testing.T) {
	assert.NoError(t, Email("player@example.com"))
	assert.Error(t, Email(""))
	assert.Error(t, Email("not-an-email"))
}
