package scaffold

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuild(t *testing.T) {
	sc := Build()

	require.NotEmpty(t, sc.Text)
	assert.Equal(t, strings.Count(sc.Text, "\n"), sc.Lines,
		"line count must match what the error mapper will subtract")
	assert.True(t, strings.HasSuffix(sc.Text, "\n"),
		"user code must start on its own line")

	assert.Contains(t, sc.Text, RecordFunc)
	assert.Contains(t, sc.Text, InstanceBinding)
	assert.True(t, strings.HasPrefix(sc.Text, "var p = "),
		"instance handle binds before anything else")
}

func TestBuildStable(t *testing.T) {
	a := Build()
	b := Build()
	assert.Equal(t, a, b)
}
