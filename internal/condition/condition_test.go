package condition

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRun_TrimmedOutputMatchesValue(t *testing.T) {
	res := Run("echo ok", map[string]bool{"ok": true})
	assert.True(t, res.Matched)
	assert.False(t, res.TimedOut)
	assert.Equal(t, "ok", res.Output)
}

func TestRun_OutputMismatch(t *testing.T) {
	res := Run("echo off", map[string]bool{"on": true})
	assert.False(t, res.Matched)
	assert.Equal(t, "off", res.Output)
}

func TestRun_EmptyValuesMatchesAnyNonEmptyOutput(t *testing.T) {
	res := Run("echo anything", nil)
	assert.True(t, res.Matched)
}

func TestRun_Timeout(t *testing.T) {
	start := time.Now()
	res := Run("sleep 5", nil)
	elapsed := time.Since(start)
	assert.True(t, res.TimedOut)
	assert.False(t, res.Matched)
	assert.Less(t, elapsed, 3*time.Second, "must not wait for the full sleep duration")
}

func TestRunAsync_DeliversOnChannel(t *testing.T) {
	ch := RunAsync("echo ok", map[string]bool{"ok": true})
	select {
	case res := <-ch:
		assert.True(t, res.Matched)
	case <-time.After(Timeout + time.Second):
		t.Fatal("RunAsync did not deliver in time")
	}
}
