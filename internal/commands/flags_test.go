package commands

import (
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

// Flag names are kebab-case everywhere; a snake_case flag would silently
// never match what hook commands and docs reference.
func TestFlagNamesAreKebabCase(t *testing.T) {
	cmds := []*cobra.Command{
		NewHookCmd(),
		NewLearnWorkerCmd(),
		NewLearnCmd(),
		NewIdeasCmd(),
		NewRunsCmd(),
	}

	var check func(c *cobra.Command)
	check = func(c *cobra.Command) {
		c.Flags().VisitAll(func(f *pflag.Flag) {
			require.NotContains(t, f.Name, "_", "flag --%s on %q", f.Name, c.Name())
			require.Equal(t, strings.ToLower(f.Name), f.Name, "flag --%s on %q", f.Name, c.Name())
		})
		for _, sub := range c.Commands() {
			check(sub)
		}
	}
	for _, c := range cmds {
		check(c)
	}
}

func TestLearnCmdFlags(t *testing.T) {
	cmd := NewLearnCmd()

	for _, name := range []string{"session", "project", "direct"} {
		require.NotNil(t, cmd.Flags().Lookup(name), "missing flag --%s", name)
	}

	// --session is required; the annotation is what cobra enforces.
	f := cmd.Flags().Lookup("session")
	vals, ok := f.Annotations[cobra.BashCompOneRequiredFlag]
	require.True(t, ok)
	require.Equal(t, []string{"true"}, vals)
}
