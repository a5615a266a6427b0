package cmd

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBackends(t *testing.T) {
	backends, err := parseBackends([]string{"plex=plex.json", " emby =e.json"}, nil)
	require.NoError(t, err)
	require.Len(t, backends, 2)
	assert.Equal(t, "plex", backends[0].Name())
	assert.Equal(t, "emby", backends[1].Name())

	for _, bad := range [][]string{nil, {"plex"}, {"=x.json"}, {"plex="}, {"a=1", "a=2"}} {
		_, err := parseBackends(bad, nil)
		assert.Error(t, err, "%v", bad)
	}
}

func TestFlagBool(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().Bool("dry-run", false, "")

	assert.True(t, flagBool(cmd, "dry-run", true))
	require.NoError(t, cmd.Flags().Set("dry-run", "false"))
	assert.False(t, flagBool(cmd, "dry-run", true))
}
