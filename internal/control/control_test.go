package control

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"testing"

	"github.com/adrg/xdg"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"labwc.dev/core/internal/core"
)

// withRuntimeDir points xdg.RuntimeDir at a fresh temp directory for the
// duration of the test, restoring the previous value afterward.
func withRuntimeDir(t *testing.T) string {
	t.Helper()
	prev := xdg.RuntimeDir
	dir := t.TempDir()
	xdg.RuntimeDir = dir
	t.Cleanup(func() { xdg.RuntimeDir = prev })
	return dir
}

type fakeDispatch struct {
	keybindCalls   []string
	workspaceCalls []string
	tilingCalls    []string
	workspaceName  string
	tilingStat     string
	failNext       error
}

func (f *fakeDispatch) KeybindEnable(id string) error    { f.keybindCalls = append(f.keybindCalls, "enable:"+id); return nil }
func (f *fakeDispatch) KeybindDisable(id string) error   { f.keybindCalls = append(f.keybindCalls, "disable:"+id); return nil }
func (f *fakeDispatch) KeybindToggle(id string) error    { f.keybindCalls = append(f.keybindCalls, "toggle:"+id); return nil }
func (f *fakeDispatch) WorkspaceSwitch(n string) error {
	f.workspaceCalls = append(f.workspaceCalls, "switch:"+n)
	return f.failNext
}
func (f *fakeDispatch) WorkspaceNext() error { f.workspaceCalls = append(f.workspaceCalls, "next"); return nil }
func (f *fakeDispatch) WorkspacePrev() error { f.workspaceCalls = append(f.workspaceCalls, "prev"); return nil }
func (f *fakeDispatch) TilingEnable() error  { f.tilingCalls = append(f.tilingCalls, "enable"); return nil }
func (f *fakeDispatch) TilingDisable() error { f.tilingCalls = append(f.tilingCalls, "disable"); return nil }
func (f *fakeDispatch) TilingToggle() error  { f.tilingCalls = append(f.tilingCalls, "toggle"); return nil }
func (f *fakeDispatch) TilingGridMode(mode string) error {
	f.tilingCalls = append(f.tilingCalls, "grid-mode:"+mode)
	return nil
}
func (f *fakeDispatch) TilingRecalculate() error { f.tilingCalls = append(f.tilingCalls, "recalculate"); return nil }
func (f *fakeDispatch) CurrentWorkspaceName() string { return f.workspaceName }
func (f *fakeDispatch) TilingStatus() string         { return f.tilingStat }

func TestWriteStatusReadStatus_RoundTrip(t *testing.T) {
	withRuntimeDir(t)
	require.NoError(t, WriteStatus(workspaceCurFile, "2"))
	got, err := ReadStatus(workspaceCurFile)
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestRuntimePath_MissingRuntimeDirIsIOError(t *testing.T) {
	prev := xdg.RuntimeDir
	xdg.RuntimeDir = ""
	defer func() { xdg.RuntimeDir = prev }()

	_, err := runtimePath(keybindCmdFile)
	assert.ErrorIs(t, err, core.ErrIOError)
}

func TestHandleCommands_AppliesEachCommandFileAndWritesStatus(t *testing.T) {
	dir := withRuntimeDir(t)
	d := &fakeDispatch{workspaceName: "2", tilingStat: "grid"}
	s := NewServer(d)

	require.NoError(t, os.WriteFile(dir+"/"+keybindCmdFile, []byte("enable mute\n"), 0o644))
	require.NoError(t, os.WriteFile(dir+"/"+workspaceCmdFile, []byte("switch 2\n"), 0o644))
	require.NoError(t, os.WriteFile(dir+"/"+tilingCmdFile, []byte("grid-mode on\n"), 0o644))

	s.handleCommands()

	assert.Equal(t, []string{"enable:mute"}, d.keybindCalls)
	assert.Equal(t, []string{"switch:2"}, d.workspaceCalls)
	assert.Equal(t, []string{"grid-mode:on"}, d.tilingCalls)

	got, err := ReadStatus(workspaceCurFile)
	require.NoError(t, err)
	assert.Equal(t, "2", got)

	got, err = ReadStatus(tilingStatusFile)
	require.NoError(t, err)
	assert.Equal(t, "grid", got)
}

func TestHandleCommands_CommandFilesAreRemovedAfterReading(t *testing.T) {
	dir := withRuntimeDir(t)
	d := &fakeDispatch{}
	s := NewServer(d)
	path := dir + "/" + keybindCmdFile
	require.NoError(t, os.WriteFile(path, []byte("toggle mute\n"), 0o644))

	s.handleCommands()

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestHandleCommands_MissingCommandFileIsSilentlySkipped(t *testing.T) {
	withRuntimeDir(t)
	d := &fakeDispatch{}
	s := NewServer(d)
	assert.NotPanics(t, func() { s.handleCommands() })
	assert.Empty(t, d.keybindCalls)
}

func TestApplyWorkspaceLine_IgnoresBlankAndUnrecognizedLines(t *testing.T) {
	d := &fakeDispatch{}
	s := NewServer(d)
	s.applyWorkspaceLine("")
	s.applyWorkspaceLine("frobnicate")
	assert.Empty(t, d.workspaceCalls)
}

func TestApplyKeybindLine_WrongFieldCountIsIgnored(t *testing.T) {
	d := &fakeDispatch{}
	s := NewServer(d)
	s.applyKeybindLine("enable")
	s.applyKeybindLine("enable mute extra")
	assert.Empty(t, d.keybindCalls)
}

func TestSendCommandAndHandleCommands_EndToEnd(t *testing.T) {
	withRuntimeDir(t)
	t.Setenv(envPID, fmt.Sprintf("%d", os.Getpid()))
	d := &fakeDispatch{}
	s := NewServer(d)

	// SendCommand signals our own PID with SIGUSR1 as its last step; absorb
	// it here so the test process doesn't take the default terminate action.
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGUSR1)
	defer signal.Stop(sigCh)

	require.NoError(t, SendCommand("tiling", "enable"))
	<-sigCh

	s.handleCommands()
	assert.Equal(t, []string{"enable"}, d.tilingCalls)
}

func TestSendCommand_UnknownFamilyErrors(t *testing.T) {
	withRuntimeDir(t)
	assert.Error(t, SendCommand("bogus", "enable"))
}

func TestSignalServer_NoPIDSetIsError(t *testing.T) {
	prev, had := os.LookupEnv(envPID)
	os.Unsetenv(envPID)
	defer func() {
		if had {
			os.Setenv(envPID, prev)
		}
	}()
	assert.Error(t, SignalServer())
}

func TestSendSignal_UnknownNameErrors(t *testing.T) {
	t.Setenv(envPID, "1")
	assert.Error(t, SendSignal("bogus"))
}
