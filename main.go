package main

import (
	"flag"
	"fmt"
	"os"

	"rsc.io/getopt"

	"labwc.dev/core/internal/control"
	"labwc.dev/core/internal/core"
	"labwc.dev/core/internal/geom"
	"labwc.dev/core/internal/output"
	"labwc.dev/core/internal/server"
	"labwc.dev/core/log"
)

const version = "0.1.0"

func main() {
	err := parseFlags(&getopt.CommandLine, os.Args[1:])
	if err == flag.ErrHelp {
		fmt.Fprintln(os.Stderr, "Usage: labwc [options]")
		getopt.CommandLine.SetOutput(os.Stderr)
		getopt.CommandLine.PrintDefaults()
		return
	} else if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	os.Setenv("LABWC_VER", version)

	if *versionFlag {
		fmt.Println("labwc " + version)
		return
	}

	if *debugFlag {
		log.SetPrefix("labwc")
	}

	if isControlInvocation() {
		runControlCLI()
		return
	}

	runCompositor()
}

// isControlInvocation reports whether any control-channel flag was given,
// which per spec.md §6 means this process is a CLI form talking to an
// already-running compositor, not the compositor itself.
func isControlInvocation() bool {
	return *exitFlag || *reconfigure ||
		*enableKeybind != "" || *disableKeybind != "" || *toggleKeybind != "" ||
		*workspaceSwitch != "" || *workspaceNext || *workspacePrev || *workspaceCur ||
		*enableTiling || *disableTiling || *toggleTiling || *tilingGridMode != "" ||
		*recalcTiling || *tilingStatus
}

// runControlCLI dispatches every control flag present, in declaration
// order, and exits with the exit code table from spec.md §6: 0 on success
// or successful query, nonzero with a stderr message on missing
// environment or file-IO failure.
func runControlCLI() {
	fail := func(err error) {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *exitFlag {
		if err := control.SendSignal("exit"); err != nil {
			fail(err)
		}
	}
	if *reconfigure {
		if err := control.SendSignal("reconfigure"); err != nil {
			fail(err)
		}
	}
	if *enableKeybind != "" {
		if err := control.SendCommand("keybind", "enable "+*enableKeybind); err != nil {
			fail(err)
		}
	}
	if *disableKeybind != "" {
		if err := control.SendCommand("keybind", "disable "+*disableKeybind); err != nil {
			fail(err)
		}
	}
	if *toggleKeybind != "" {
		if err := control.SendCommand("keybind", "toggle "+*toggleKeybind); err != nil {
			fail(err)
		}
	}
	if *workspaceSwitch != "" {
		if err := control.SendCommand("workspace", "switch "+*workspaceSwitch); err != nil {
			fail(err)
		}
	}
	if *workspaceNext {
		if err := control.SendCommand("workspace", "next"); err != nil {
			fail(err)
		}
	}
	if *workspacePrev {
		if err := control.SendCommand("workspace", "prev"); err != nil {
			fail(err)
		}
	}
	if *workspaceCur {
		name, err := control.ReadStatus("labwc-workspace-current")
		if err != nil {
			fail(err)
		}
		fmt.Println(name)
	}
	if *enableTiling {
		if err := control.SendCommand("tiling", "enable"); err != nil {
			fail(err)
		}
	}
	if *disableTiling {
		if err := control.SendCommand("tiling", "disable"); err != nil {
			fail(err)
		}
	}
	if *toggleTiling {
		if err := control.SendCommand("tiling", "toggle"); err != nil {
			fail(err)
		}
	}
	if *tilingGridMode != "" {
		if err := control.SendCommand("tiling", "grid-mode "+*tilingGridMode); err != nil {
			fail(err)
		}
	}
	if *recalcTiling {
		if err := control.SendCommand("tiling", "recalculate"); err != nil {
			fail(err)
		}
	}
	if *tilingStatus {
		status, err := control.ReadStatus("labwc-tiling-status")
		if err != nil {
			fail(err)
		}
		fmt.Println(status)
	}
}

// runCompositor boots the window-management core. The Wayland display
// backend, scene graph, and input devices are the excluded external
// collaborators (spec.md §1); a real build wires their event callbacks
// into the Server returned here. This entry point owns what this
// repository actually implements: the aggregate, its control channel, and
// the signal-driven reconfigure/shutdown paths.
func runCompositor() {
	if os.Geteuid() != os.Getuid() {
		fmt.Fprintln(os.Stderr, fmt.Errorf("labwc: %w: refusing to run setuid", core.ErrFatalInit))
		os.Exit(1)
	}
	if os.Getenv("XDG_RUNTIME_DIR") == "" {
		fmt.Fprintln(os.Stderr, fmt.Errorf("labwc: %w: XDG_RUNTIME_DIR not set", core.ErrFatalInit))
		os.Exit(1)
	}

	srv := server.New([]string{"1", "2", "3", "4"}, 10)
	// Real output layout arrives from the excluded backend's
	// output-management events; this placeholder stands in until one is
	// wired, so the tiling engine has somewhere to lay views out.
	srv.Outputs.Add(output.New("virtual-1", geom.Rect{X: 0, Y: 0, W: 1920, H: 1080}))

	ctl := control.NewServer(srv)
	ctl.OnReconfigure = func() {
		log.Infof("reconfigure requested")
		srv.Keybinds.Reset()
	}
	ctl.OnShutdown = func() {
		log.Infof("shutting down")
	}
	ctl.Start()
	defer ctl.Stop()

	control.WriteStatus("labwc-workspace-current", srv.CurrentWorkspaceName())
	control.WriteStatus("labwc-tiling-status", srv.TilingStatus())

	select {}
}
