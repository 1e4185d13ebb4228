package action

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRun_ExecutesInOrder(t *testing.T) {
	r := New()
	var order []string
	r.Register("a", func(Record) error { order = append(order, "a"); return nil })
	r.Register("b", func(Record) error { order = append(order, "b"); return nil })

	err := r.Run([]Record{{Name: "a"}, {Name: "b"}})
	assert.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, order)
}

func TestRun_StopsAtFirstError(t *testing.T) {
	r := New()
	boom := errors.New("boom")
	var ran []string
	r.Register("a", func(Record) error { ran = append(ran, "a"); return boom })
	r.Register("b", func(Record) error { ran = append(ran, "b"); return nil })

	err := r.Run([]Record{{Name: "a"}, {Name: "b"}})
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, []string{"a"}, ran)
}

func TestRun_UnknownActionErrors(t *testing.T) {
	r := New()
	err := r.Run([]Record{{Name: "missing"}})
	assert.Error(t, err)
}

func TestKnown(t *testing.T) {
	r := New()
	r.Register("close-window", func(Record) error { return nil })
	assert.True(t, r.Known("close-window"))
	assert.False(t, r.Known("nonexistent"))
}

func TestRegister_ReplacesEarlierHandler(t *testing.T) {
	r := New()
	r.Register("a", func(Record) error { return errors.New("old") })
	r.Register("a", func(Record) error { return nil })
	assert.NoError(t, r.Run([]Record{{Name: "a"}}))
}

func TestRunInhibited_NoInhibitRunsEverything(t *testing.T) {
	r := New()
	var ran []string
	r.Register("a", func(Record) error { ran = append(ran, "a"); return nil })

	assert.NoError(t, r.RunInhibited([]Record{{Name: "a"}}, nil))
	assert.Equal(t, []string{"a"}, ran)
}

func TestRunInhibited_DropsInhibitedRecordsSilently(t *testing.T) {
	r := New()
	var ran []string
	r.Register("close-window", func(Record) error { ran = append(ran, "close-window"); return nil })
	r.Register("minimize", func(Record) error { ran = append(ran, "minimize"); return nil })

	err := r.RunInhibited(
		[]Record{{Name: "close-window"}, {Name: "minimize"}},
		map[string]bool{"close-window": true},
	)
	assert.NoError(t, err)
	assert.Equal(t, []string{"minimize"}, ran)
}

func TestRunInhibited_InhibitingUnknownActionDoesNotError(t *testing.T) {
	r := New()
	err := r.RunInhibited([]Record{{Name: "unregistered"}}, map[string]bool{"unregistered": true})
	assert.NoError(t, err)
}
