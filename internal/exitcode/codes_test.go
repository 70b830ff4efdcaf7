package exitcode_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/appforge/appforge/internal/exitcode"
)

func TestExitCodeValues(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		expected int
	}{
		{"Success", exitcode.Success, 0},
		{"Error", exitcode.Error, 1},
		{"GenerationFailed", exitcode.GenerationFailed, 2},
		{"ScaffoldFailed", exitcode.ScaffoldFailed, 3},
		{"ToolchainFailed", exitcode.ToolchainFailed, 4},
		{"BuildFailed", exitcode.BuildFailed, 5},
		{"Interrupted", exitcode.Interrupted, 130},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.code)
		})
	}
}

func TestExitCodeNames(t *testing.T) {
	assert.Equal(t, "Success", exitcode.Name(exitcode.Success))
	assert.Equal(t, "BuildFailed", exitcode.Name(exitcode.BuildFailed))
	assert.Equal(t, "Interrupted", exitcode.Name(exitcode.Interrupted))
	assert.Equal(t, "unknown", exitcode.Name(42))
	assert.Equal(t, "unknown", exitcode.Name(-1))
}

func TestCodesAreDistinct(t *testing.T) {
	codes := []int{
		exitcode.Success,
		exitcode.Error,
		exitcode.GenerationFailed,
		exitcode.ScaffoldFailed,
		exitcode.ToolchainFailed,
		exitcode.BuildFailed,
		exitcode.Interrupted,
	}
	seen := make(map[int]bool)
	for _, c := range codes {
		assert.False(t, seen[c], "duplicate exit code value: %d", c)
		seen[c] = true
	}
}
