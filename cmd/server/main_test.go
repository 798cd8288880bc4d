package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Subcommands(t *testing.T) {
	root := newRootCmd()

	for _, path := range [][]string{{"serve"}, {"seed"}, {"db", "upgrade"}, {"db", "downgrade"}, {"db", "version"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}
}

func TestSeedCommand_PassesFlagsThrough(t *testing.T) {
	cmd, _, err := newRootCmd().Find([]string{"seed"})
	require.NoError(t, err)
	assert.True(t, cmd.DisableFlagParsing)
}
