package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HSMCTL_LOG_LEVEL", "error")
	t.Setenv("HSMCTL_LOG_FORMAT", "text")
	t.Setenv("HSMCTL_RANKDIR", "")

	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidateCmd(t *testing.T) {
	out, err := execute(t, "validate", "../../definition/testdata/player.yaml")

	require.NoError(t, err)
	assert.Equal(t, "Definition is valid\n", out)
}

func TestValidateCmd_Problems(t *testing.T) {
	out, err := execute(t, "validate", "testdata/broken.yaml")

	require.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, `- transition idle -> missing: target state "missing" is not registered`)
	assert.Contains(t, out, `- composite state "active" has no initial state`)
}

func TestValidateCmd_MissingFile(t *testing.T) {
	_, err := execute(t, "validate", "testdata/nope.yaml")

	assert.ErrorContains(t, err, "failed to read definition")
}

func TestCyclesCmd(t *testing.T) {
	out, err := execute(t, "cycles", "../../definition/testdata/turnstile.yaml")

	require.NoError(t, err)
	assert.Equal(t, "No cycles detected\n", out)
}

func TestDotCmd(t *testing.T) {
	t.Run("stdout", func(t *testing.T) {
		out, err := execute(t, "dot", "../../definition/testdata/turnstile.yaml")

		require.NoError(t, err)
		assert.Contains(t, out, `digraph "turnstile" {`)
		assert.Contains(t, out, "rankdir=TB;")
		assert.Contains(t, out, `"locked" -> "unlocked" [label="coin"];`)
	})

	t.Run("rank direction from environment", func(t *testing.T) {
		t.Setenv("HSMCTL_RANKDIR", "LR")
		var out bytes.Buffer
		cmd := newRootCmd()
		cmd.SetOut(&out)
		cmd.SetArgs([]string{"dot", "../../definition/testdata/turnstile.yaml"})

		require.NoError(t, cmd.Execute())
		assert.Contains(t, out.String(), "rankdir=LR;")
	})
}

func TestRunCmd(t *testing.T) {
	out, err := execute(t, "run", "../../definition/testdata/player.yaml", "power", "next", "bogus", "power", "power")

	require.NoError(t, err)
	assert.Equal(t, `start: off
power: on/track (handled)
next: on/chorus (handled)
bogus: on/chorus (ignored)
power: off (handled)
power: on/chorus (handled)
visited: off -> on -> track -> chorus -> off -> on -> chorus
`, out)
}

func TestRunCmd_Metrics(t *testing.T) {
	out, err := execute(t, "run", "--metrics", "../../definition/testdata/turnstile.yaml", "coin", "push")

	require.NoError(t, err)
	assert.Contains(t, out, `hsm_state_entries_total{state="locked"} 2`)
	assert.Contains(t, out, `hsm_state_exits_total{state="unlocked"} 1`)
	assert.Contains(t, out, `hsm_state_duration_seconds{state="locked"} 2`)
}

func TestRunCmd_StartFailure(t *testing.T) {
	_, err := execute(t, "run", "testdata/broken.yaml")

	assert.ErrorContains(t, err, "validation failed")
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")

	require.NoError(t, err)
	assert.Equal(t, "hsmctl version dev\n", out)
}
