package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewVersionCmd(t *testing.T) {
	cmd := NewVersionCmd()

	assert.Equal(t, "version", cmd.Use)
	assert.NotEmpty(t, cmd.Short)
	assert.NotEmpty(t, cmd.Long)
}

func TestVersionCmd_Execute(t *testing.T) {
	stdout, _, err := executeCmd(t, "version")
	require.NoError(t, err)

	assert.Contains(t, stdout, "crudgen version dev")
	assert.Contains(t, stdout, "Commit:  unknown")
}

func TestRootCmd_Subcommands(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"generate", "render", "new", "targets", "version"} {
		assert.Contains(t, names, want)
	}
	assert.True(t, root.SilenceUsage)
	assert.True(t, root.SilenceErrors)
}
