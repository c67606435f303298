package definition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/hsm"
)

func process(t *testing.T, m *hsm.CompositeMachine, events ...string) {
	t.Helper()
	for _, event := range events {
		handled, err := m.ProcessEvent(event)
		require.NoError(t, err)
		require.True(t, handled, "event %q not handled", event)
	}
}

func TestLoad(t *testing.T) {
	def, err := Load("testdata/turnstile.yaml")
	require.NoError(t, err)

	assert.Equal(t, "turnstile", def.Name)
	assert.Equal(t, "locked", def.Initial)
	assert.Len(t, def.States, 2)
	assert.Equal(t, Transition{From: "locked", To: "unlocked", On: "coin"}, def.Transitions[0])
	require.NoError(t, def.Validate())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load("testdata/missing.yaml")

	assert.ErrorContains(t, err, "failed to read definition")
}

func TestParse_Errors(t *testing.T) {
	_, err := Parse(nil)
	assert.ErrorContains(t, err, "definition is empty")

	_, err = Parse([]byte("name: x\nunknown: true\n"))
	assert.ErrorContains(t, err, "failed to parse definition")

	_, err = Parse([]byte("states: [a\n"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	def, err := Parse([]byte(`
initial: ghost
states:
  - name: a
  - name: a
  - name: leaf
  - name: ""
transitions:
  - {from: a}
regions:
  - composite: leaf
    machine: {}
  - composite: nowhere
    machine: {initial: x, states: [{name: x}]}
`))
	require.NoError(t, err)

	err = def.Validate()

	var verr *hsm.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{
		`state "a" declared more than once`,
		`state with empty name`,
		`initial state "ghost" is not declared`,
		`transition 0: from and to are required`,
		`region "leaf": state is not composite`,
		`region "leaf": no states declared`,
		`region "leaf": initial state is not set`,
		`region "nowhere": composite is not declared`,
	}, verr.Problems)
}

func TestBuild_Turnstile(t *testing.T) {
	def, err := Load("testdata/turnstile.yaml")
	require.NoError(t, err)

	m, err := def.Build()
	require.NoError(t, err)
	require.NoError(t, m.Start())

	process(t, m, "coin")
	assert.Equal(t, "unlocked", m.CurrentState().Name())
	process(t, m, "push")
	assert.Equal(t, "locked", m.CurrentState().Name())
}

func TestBuild_NestedStates(t *testing.T) {
	def, err := Parse([]byte(`
name: nested
initial: idle
states:
  - name: active
    initial: idle
    states:
      - name: idle
      - name: busy
  - name: done
transitions:
  - {from: idle, to: busy, on: work}
  - {from: active, to: done, on: abort}
`))
	require.NoError(t, err)

	m, err := def.Build()
	require.NoError(t, err)

	g := m.Graph()
	assert.Equal(t, "active", g.Parent("idle"))
	assert.Equal(t, "active", g.Parent("busy"))
	assert.True(t, g.IsComposite("active"))
	assert.Empty(t, g.Validate())

	require.NoError(t, m.Start())
	process(t, m, "work", "abort")
	assert.Equal(t, "done", m.CurrentState().Name())
}

func TestBuild_Regions(t *testing.T) {
	def, err := Load("testdata/player.yaml")
	require.NoError(t, err)

	m, err := def.Build()
	require.NoError(t, err)
	sub, ok := m.Submachine("on")
	require.True(t, ok)
	track := sub.(*hsm.CompositeMachine)

	require.NoError(t, m.Start())
	process(t, m, "power", "next")
	assert.Equal(t, "on", m.CurrentState().Name())
	assert.Equal(t, "chorus", track.CurrentState().Name())

	process(t, m, "power", "power")
	assert.Equal(t, "chorus", track.CurrentState().Name())

	process(t, m, "next")
	assert.Equal(t, "outro", track.CurrentState().Name())
}

func TestBuild_UnknownEndpointsReportedOnStart(t *testing.T) {
	def, err := Parse([]byte(`
initial: a
states: [{name: a}]
transitions: [{from: a, to: b}]
`))
	require.NoError(t, err)

	m, err := def.Build()
	require.NoError(t, err)

	err = m.Start()
	assert.True(t, hsm.IsValidationError(err))
	assert.ErrorContains(t, err, `target state "b" is not registered`)
}

func TestBuild_RejectsInvalidDocument(t *testing.T) {
	def := &Definition{Initial: "a"}

	_, err := def.Build()

	assert.True(t, hsm.IsValidationError(err))
}

func TestValidate_RegionStatesMustNotShadowParentStates(t *testing.T) {
	def, err := Parse([]byte(`
initial: idle
states:
  - name: idle
  - name: box
    initial: inner
  - name: other
    initial: inner
regions:
  - composite: box
    machine:
      initial: idle
      states: [{name: idle}, {name: inner}]
  - composite: other
    machine:
      initial: inner
      states: [{name: inner}]
`))
	require.NoError(t, err)

	err = def.Validate()

	var verr *hsm.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ElementsMatch(t, []string{
		`region "box": state "idle" is already declared`,
		`region "other": state "inner" is already declared`,
	}, verr.Problems)

	_, err = def.Build()
	assert.True(t, hsm.IsValidationError(err))
}

func TestValidate_RegionMayReuseCompositeName(t *testing.T) {
	def, err := Parse([]byte(`
initial: "off"
states:
  - name: "off"
  - name: "on"
    initial: track
regions:
  - composite: "on"
    machine:
      initial: "on"
      states:
        - name: "on"
          initial: track
          states: [{name: track}]
`))
	require.NoError(t, err)

	require.NoError(t, def.Validate())
	m, err := def.Build()
	require.NoError(t, err)
	assert.Equal(t, "on", m.Graph().Parent("track"))
}
