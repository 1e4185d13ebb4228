// Package control implements the Control Channel (C6): out-of-band
// CLI-driven control via signals and a shared runtime directory. Grounded
// on the teacher's niri_ipc.go dial-a-socket-and-read-lines idiom,
// re-expressed around files-plus-signals instead of a long-lived socket
// since that is the excluded protocol this port targets (spec.md §4.6),
// and on lib/state.go's registry-of-running-things shape, narrowed to the
// single owned Server this package actually needs.
package control

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/adrg/xdg"
	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"

	"labwc.dev/core/internal/core"
	"labwc.dev/core/log"
)

var logger = log.New("control")

const (
	keybindCmdFile    = "labwc-keybind-cmd"
	workspaceCmdFile  = "labwc-workspace-cmd"
	tilingCmdFile     = "labwc-tiling-cmd"
	workspaceCurFile  = "labwc-workspace-current"
	tilingStatusFile  = "labwc-tiling-status"
	envPID            = "LABWC_PID"
)

// runtimePath resolves a runtime-file name under XDG_RUNTIME_DIR, the way
// spec.md §6 requires (IOError if the directory itself is missing).
func runtimePath(name string) (string, error) {
	dir := xdg.RuntimeDir
	if dir == "" {
		return "", fmt.Errorf("control: %w: XDG_RUNTIME_DIR not set", core.ErrIOError)
	}
	return filepath.Join(dir, name), nil
}

// Dispatch is what the running server exposes for the command files to
// drive: one method per command family in the spec.md §4.6 table.
type Dispatch interface {
	KeybindEnable(id string) error
	KeybindDisable(id string) error
	KeybindToggle(id string) error
	WorkspaceSwitch(nameOrIndex string) error
	WorkspaceNext() error
	WorkspacePrev() error
	TilingEnable() error
	TilingDisable() error
	TilingToggle() error
	TilingGridMode(mode string) error // "on" | "off" | "toggle"
	TilingRecalculate() error

	// CurrentWorkspaceName and TilingStatus back the query commands;
	// handleCommands writes their values to the corresponding status
	// files after every batch of commands.
	CurrentWorkspaceName() string
	TilingStatus() string // "stacking" | "grid" | "smart"
}

// Server owns the signal handling loop for one running compositor
// process. It writes its own PID into LABWC_PID at Start; Stop leaves the
// runtime status files in place.
type Server struct {
	Dispatch Dispatch
	OnReconfigure func()
	OnShutdown    func()

	sigCh   chan os.Signal
	done    chan struct{}
	watcher *fsnotify.Watcher
}

// NewServer creates a control server wired to the given dispatch target.
func NewServer(d Dispatch) *Server {
	return &Server{Dispatch: d, sigCh: make(chan os.Signal, 4), done: make(chan struct{})}
}

// Start publishes LABWC_PID and begins handling SIGUSR1/SIGHUP/SIGTERM on
// a background goroutine. It also arms a belt-and-suspenders fsnotify
// watch on XDG_RUNTIME_DIR: a command file rewritten by a script that
// forgot to deliver SIGUSR1 (or whose signal was dropped under load)
// still gets picked up. Stop must be called to release resources.
func (s *Server) Start() {
	os.Setenv(envPID, fmt.Sprintf("%d", os.Getpid()))
	signal.Notify(s.sigCh, syscall.SIGUSR1, syscall.SIGHUP, syscall.SIGTERM)

	if w, err := fsnotify.NewWatcher(); err == nil {
		if xdg.RuntimeDir != "" && w.Add(xdg.RuntimeDir) == nil {
			s.watcher = w
		} else {
			w.Close()
		}
	}

	go s.loop()
}

// Stop halts signal handling and the fallback file watcher. It does not
// send SIGTERM to anyone; orderly shutdown is triggered by receiving
// SIGTERM, not by calling Stop.
func (s *Server) Stop() {
	signal.Stop(s.sigCh)
	if s.watcher != nil {
		s.watcher.Close()
	}
	close(s.done)
}

// watchedFile reports whether name is one of the command files the fallback
// watcher should react to.
func watchedFile(name string) bool {
	switch name {
	case keybindCmdFile, workspaceCmdFile, tilingCmdFile:
		return true
	default:
		return false
	}
}

func (s *Server) loop() {
	var watchEvents chan fsnotify.Event
	if s.watcher != nil {
		watchEvents = s.watcher.Events
	}
	for {
		select {
		case <-s.done:
			return
		case sig := <-s.sigCh:
			switch sig {
			case syscall.SIGUSR1:
				s.handleCommands()
			case syscall.SIGHUP:
				if s.OnReconfigure != nil {
					s.OnReconfigure()
				}
			case syscall.SIGTERM:
				if s.OnShutdown != nil {
					s.OnShutdown()
				}
				return
			}
		case ev, ok := <-watchEvents:
			if !ok {
				watchEvents = nil
				continue
			}
			if ev.Op&(fsnotify.Write|fsnotify.Create) != 0 && watchedFile(filepath.Base(ev.Name)) {
				s.handleCommands()
			}
		}
	}
}

// handleCommands reads each command file once, best-effort, per spec.md
// §4.6: missing files are skipped silently, unrecognized lines are
// ignored, and nothing here may panic the process.
func (s *Server) handleCommands() {
	s.readAndApply(keybindCmdFile, s.applyKeybindLine)
	s.readAndApply(workspaceCmdFile, s.applyWorkspaceLine)
	s.readAndApply(tilingCmdFile, s.applyTilingLine)

	WriteStatus(workspaceCurFile, s.Dispatch.CurrentWorkspaceName())
	WriteStatus(tilingStatusFile, s.Dispatch.TilingStatus())
}

func (s *Server) readAndApply(name string, apply func(line string)) {
	path, err := runtimePath(name)
	if err != nil {
		return
	}
	f, err := os.Open(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Warnf("reading %s: %v", name, err)
		}
		return
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		apply(line)
	}
	os.Remove(path)
}

func (s *Server) applyKeybindLine(line string) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return
	}
	var err error
	switch fields[0] {
	case "enable":
		err = s.Dispatch.KeybindEnable(fields[1])
	case "disable":
		err = s.Dispatch.KeybindDisable(fields[1])
	case "toggle":
		err = s.Dispatch.KeybindToggle(fields[1])
	}
	if err != nil {
		logger.Warnf("keybind command %q: %v", line, err)
	}
}

func (s *Server) applyWorkspaceLine(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	var err error
	switch fields[0] {
	case "switch":
		if len(fields) == 2 {
			err = s.Dispatch.WorkspaceSwitch(fields[1])
		}
	case "next":
		err = s.Dispatch.WorkspaceNext()
	case "prev":
		err = s.Dispatch.WorkspacePrev()
	}
	if err != nil {
		logger.Warnf("workspace command %q: %v", line, err)
	}
}

func (s *Server) applyTilingLine(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	var err error
	switch fields[0] {
	case "enable":
		err = s.Dispatch.TilingEnable()
	case "disable":
		err = s.Dispatch.TilingDisable()
	case "toggle":
		err = s.Dispatch.TilingToggle()
	case "grid-mode":
		if len(fields) == 2 {
			err = s.Dispatch.TilingGridMode(fields[1])
		}
	case "recalculate":
		err = s.Dispatch.TilingRecalculate()
	}
	if err != nil {
		logger.Warnf("tiling command %q: %v", line, err)
	}
}

// WriteStatus atomically (open-write-close, per spec.md §5's
// shared-resource policy) writes content to a runtime status file.
func WriteStatus(name, content string) error {
	path, err := runtimePath(name)
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(content+"\n"), 0o644); err != nil {
		return fmt.Errorf("control: %w: writing %s", core.ErrIOError, name)
	}
	return os.Rename(tmp, path)
}

// ReadStatus reads a runtime status file written by a running server, for
// the CLI's query flags (--workspace-current, --tiling-status).
func ReadStatus(name string) (string, error) {
	path, err := runtimePath(name)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("control: %w: reading %s", core.ErrIOError, name)
	}
	return strings.TrimSpace(string(data)), nil
}

// SendCommand is the CLI side of the protocol: it locks the target command
// file (so concurrent CLI invocations don't interleave lines), appends
// line, and signals the running server's PID with SIGUSR1.
func SendCommand(family, line string) error {
	var name string
	switch family {
	case "keybind":
		name = keybindCmdFile
	case "workspace":
		name = workspaceCmdFile
	case "tiling":
		name = tilingCmdFile
	default:
		return fmt.Errorf("control: unknown command family %q", family)
	}

	path, err := runtimePath(name)
	if err != nil {
		return err
	}

	lock := flock.New(path + ".lock")
	if err := lock.Lock(); err != nil {
		return fmt.Errorf("control: %w: locking %s", core.ErrIOError, name)
	}
	defer lock.Unlock()

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("control: %w: opening %s", core.ErrIOError, name)
	}
	if _, err := f.WriteString(line + "\n"); err != nil {
		f.Close()
		return fmt.Errorf("control: %w: writing %s", core.ErrIOError, name)
	}
	f.Close()

	return SignalServer()
}

// SignalServer sends SIGUSR1 to the PID recorded in LABWC_PID.
func SignalServer() error {
	pidStr := os.Getenv(envPID)
	if pidStr == "" {
		return fmt.Errorf("control: %w: LABWC_PID not set", core.ErrIOError)
	}
	var pid int
	if _, err := fmt.Sscanf(pidStr, "%d", &pid); err != nil {
		return fmt.Errorf("control: invalid LABWC_PID %q", pidStr)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("control: %w: no such process %d", core.ErrIOError, pid)
	}
	return proc.Signal(syscall.SIGUSR1)
}

// SendSignal sends a named signal ("reconfigure" -> SIGHUP, "exit" ->
// SIGTERM) to LABWC_PID, for the CLI's -r/-e flags.
func SendSignal(name string) error {
	pidStr := os.Getenv(envPID)
	if pidStr == "" {
		return fmt.Errorf("control: %w: LABWC_PID not set", core.ErrIOError)
	}
	var pid int
	if _, err := fmt.Sscanf(pidStr, "%d", &pid); err != nil {
		return fmt.Errorf("control: invalid LABWC_PID %q", pidStr)
	}
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("control: %w: no such process %d", core.ErrIOError, pid)
	}
	var sig os.Signal
	switch name {
	case "reconfigure":
		sig = syscall.SIGHUP
	case "exit":
		sig = syscall.SIGTERM
	default:
		return fmt.Errorf("control: unknown signal %q", name)
	}
	return proc.Signal(sig)
}
