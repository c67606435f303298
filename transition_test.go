package hsm

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBasicTransition_EvaluateGuards(t *testing.T) {
	tests := []struct {
		name       string
		transition *BasicTransition
		event      Event
		want       bool
	}{
		{name: "no trigger accepts anything", transition: NewTransition("A", "B"), event: 7, want: true},
		{name: "trigger matches name", transition: NewTransition("A", "B").On("go"), event: NewEvent("go", nil), want: true},
		{name: "trigger mismatch", transition: NewTransition("A", "B").On("go"), event: "stop", want: false},
		{
			name:       "all guards pass",
			transition: NewTransition("A", "B").WithGuard(func(Event) bool { return true }).WithGuard(nil),
			event:      "x",
			want:       true,
		},
		{
			name:       "one guard fails",
			transition: NewTransition("A", "B").WithGuard(func(Event) bool { return true }).WithGuard(func(Event) bool { return false }),
			event:      "x",
			want:       false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.transition.EvaluateGuards(tt.event))
		})
	}
}

func TestBasicTransition_ExecuteActions(t *testing.T) {
	errStop := errors.New("stop")
	var calls []int
	tr := NewTransition("A", "B").
		WithAction(func(Event) error { calls = append(calls, 1); return nil }).
		WithAction(nil).
		WithAction(func(Event) error { calls = append(calls, 2); return errStop }).
		WithAction(func(Event) error { calls = append(calls, 3); return nil })

	err := tr.ExecuteActions("go")

	assert.ErrorIs(t, err, errStop)
	assert.Equal(t, []int{1, 2}, calls)
}

func TestBasicTransition_Accessors(t *testing.T) {
	tr := NewTransition("A", "B").On("go").WithPriority(3)

	assert.Equal(t, "A", tr.Source())
	assert.Equal(t, "B", tr.Target())
	assert.Equal(t, "go", tr.Trigger())
	assert.Equal(t, 3, tr.Priority())
	assert.Zero(t, NewTransition("A", "B").Priority())
}
