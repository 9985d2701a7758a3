package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/yairfalse/kartta/pkg/types"
)

func TestKarttaError_Rendering(t *testing.T) {
	err := New(ErrorTypeInputMissing, SourceSnapshot, "Architecture document not found").
		WithCause("correlation_ids.json does not exist").
		WithSolutions(
			"Run 'kartta discover' to produce a snapshot first",
			"Check the file path",
		).
		WithHelp("kartta discover --help")

	msg := err.Error()
	assert.Contains(t, msg, "Architecture document not found")
	assert.Contains(t, msg, "correlation_ids.json does not exist")
	assert.Contains(t, msg, "kartta discover --help")

	verbose := fmt.Sprintf("%+v", err)
	assert.Contains(t, verbose, "[InputMissing/Snapshot]")
}

func TestIsType(t *testing.T) {
	err := New(ErrorTypeParse, SourceHistory, "corrupt history file")
	assert.True(t, IsType(err, ErrorTypeParse))
	assert.False(t, IsType(err, ErrorTypeFetch))
	assert.False(t, IsType(fmt.Errorf("plain"), ErrorTypeParse))
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		errType ErrorType
		want    int
	}{
		{ErrorTypeInputMissing, 66},
		{ErrorTypeParse, 65},
		{ErrorTypeConfiguration, 78},
		{ErrorTypeFetch, 69},
		{ErrorTypeStorage, 74},
		{ErrorTypeValidation, 1},
	}
	for _, tt := range tests {
		err := New(tt.errType, SourceUnknown, "x")
		assert.Equal(t, tt.want, GetExitCode(err), "type %s", tt.errType)
	}
	assert.Equal(t, 1, GetExitCode(fmt.Errorf("plain")))
}

func TestDriftExitCode(t *testing.T) {
	assert.Equal(t, 0, DriftExitCode(types.SeverityNoChange))
	assert.Equal(t, 0, DriftExitCode(types.SeverityLow))
	assert.Equal(t, 0, DriftExitCode(types.SeverityMedium))
	assert.Equal(t, 1, DriftExitCode(types.SeverityHigh))
	assert.Equal(t, 1, DriftExitCode(types.SeverityCritical))
}
