package main

import (
	"flag"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"rsc.io/getopt"
)

var (
	configFile    = flag.String("config", "", "Path to the configuration file")
	configDir     = flag.String("config-dir", "", "Path to the configuration directory")
	debugFlag     = flag.Bool("debug", false, "Verbose debug logging")
	exitFlag      = flag.Bool("exit", false, "Send SIGTERM to the running compositor")
	mergeConfig   = flag.Bool("merge-config", false, "Merge config-dir files on top of config")
	reconfigure   = flag.Bool("reconfigure", false, "Send SIGHUP to the running compositor")
	startupCmd    = flag.String("startup", "", "Command to autostart")
	sessionCmd    = flag.String("session", "", "Primary client command; exit when it dies")
	versionFlag   = flag.Bool("version", false, "Print version and exit")
	verboseFlag   = flag.Bool("verbose", false, "Info-level logging")

	enableKeybind   = flag.String("enable-keybind", "", "Enable a keybind by id")
	disableKeybind  = flag.String("disable-keybind", "", "Disable a keybind by id")
	toggleKeybind   = flag.String("toggle-keybind", "", "Toggle a keybind by id")
	workspaceSwitch = flag.String("workspace-switch", "", "Switch to a workspace by name or index")
	workspaceNext   = flag.Bool("workspace-next", false, "Switch to the next workspace")
	workspacePrev   = flag.Bool("workspace-prev", false, "Switch to the previous workspace")
	workspaceCur    = flag.Bool("workspace-current", false, "Print the active workspace and exit")
	enableTiling    = flag.Bool("enable-tiling", false, "Enable the tiling engine")
	disableTiling   = flag.Bool("disable-tiling", false, "Disable the tiling engine")
	toggleTiling    = flag.Bool("toggle-tiling", false, "Toggle the tiling engine")
	tilingGridMode  = flag.String("tiling-grid-mode", "", "on|off|toggle")
	recalcTiling    = flag.Bool("recalculate-tiling", false, "Force a tiling re-layout")
	tilingStatus    = flag.Bool("tiling-status", false, "Print stacking|grid|smart and exit")
)

type boolFlag interface {
	IsBoolFlag() bool
}

func init() {
	getopt.CommandLine.Init("labwc", flag.ContinueOnError)
	getopt.CommandLine.SetOutput(io.Discard)
	getopt.Alias("c", "config")
	getopt.Alias("C", "config-dir")
	getopt.Alias("d", "debug")
	getopt.Alias("e", "exit")
	getopt.Alias("m", "merge-config")
	getopt.Alias("r", "reconfigure")
	getopt.Alias("s", "startup")
	getopt.Alias("S", "session")
	getopt.Alias("v", "version")
	getopt.Alias("V", "verbose")
	getopt.CommandLine.Usage = func() {}
}

// parseFlags implements GNU-style long/short option parsing (combined
// short flags, "--flag=value" and "--flag value" both accepted), the way
// the teacher's waybar-module CLI did for its own smaller flag set.
func parseFlags(f *getopt.FlagSet, args []string) error {
	for len(args) > 0 {
		arg := args[0]
		if len(arg) < 2 || arg[0] != '-' {
			break
		}
		args = args[1:]
		if arg[:2] == "--" {
			if arg == "--" {
				break
			}
			name := arg[2:]
			value := ""
			haveValue := false
			if i := strings.Index(name, "="); i >= 0 {
				name, value = name[:i], name[i+1:]
				haveValue = true
			}
			fg := f.Lookup(name)
			if fg == nil {
				if name == "h" || name == "help" {
					return flag.ErrHelp
				}
				return fmt.Errorf("flag provided but not defined: --%s", name)
			}
			if b, ok := fg.Value.(boolFlag); ok && b.IsBoolFlag() {
				if haveValue {
					if err := fg.Value.Set(value); err != nil {
						return fmt.Errorf("invalid boolean value %q for --%s: %v", value, name, err)
					}
				} else {
					if err := fg.Value.Set("true"); err != nil {
						return fmt.Errorf("invalid boolean flag %s: %v", name, err)
					}
				}
				continue
			}
			if !haveValue {
				if len(args) == 0 {
					return fmt.Errorf("missing argument for --%s", name)
				}
				value, args = args[0], args[1:]
			}
			if err := fg.Value.Set(value); err != nil {
				return fmt.Errorf("invalid value %q for flag --%s: %v", value, name, err)
			}
			continue
		}

		for arg = arg[1:]; arg != ""; {
			r, size := utf8.DecodeRuneInString(arg)
			if r == utf8.RuneError && size == 1 {
				return fmt.Errorf("invalid UTF8 in command-line flags")
			}
			name := arg[:size]
			arg = arg[size:]
			fg := f.Lookup(name)
			if fg == nil {
				if name == "h" {
					return flag.ErrHelp
				}
				return fmt.Errorf("flag provided but not defined: -%s", name)
			}
			if b, ok := fg.Value.(boolFlag); ok && b.IsBoolFlag() {
				if err := fg.Value.Set("true"); err != nil {
					return fmt.Errorf("invalid boolean flag %s: %v", name, err)
				}
				continue
			}
			if arg == "" {
				if len(args) == 0 {
					return fmt.Errorf("missing argument for -%s", name)
				}
				arg, args = args[0], args[1:]
			}
			if err := fg.Value.Set(arg); err != nil {
				return fmt.Errorf("invalid value %q for flag -%s: %v", arg, name, err)
			}
			break
		}
	}

	f.FlagSet.Parse(append([]string{"--"}, args...))
	return nil
}
