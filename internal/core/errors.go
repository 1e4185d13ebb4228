// Package core holds error sentinels shared across the window-management
// components, per the error taxonomy in the design.
package core

import "errors"

var (
	// ErrViewGone means the operation targeted a view that has already been
	// unregistered. Mutating a destroyed view is a programming error.
	ErrViewGone = errors.New("view is gone")

	// ErrNotMapped means the operation targeted a view that is not
	// currently mapped. Non-fatal; callers are expected to ignore it.
	ErrNotMapped = errors.New("view is not mapped")

	// ErrConfigError means malformed configuration: an unknown modifier
	// name, an unknown keysym, or a malformed rule. Logged and skipped at
	// load time, not fatal to the process.
	ErrConfigError = errors.New("invalid configuration")

	// ErrSpawnError means a condition or action command could not be
	// forked/exec'd.
	ErrSpawnError = errors.New("failed to spawn command")

	// ErrConditionTimeout means a condition command did not complete within
	// the allotted window.
	ErrConditionTimeout = errors.New("condition command timed out")

	// ErrIOError means a runtime-directory or command-file operation
	// failed (missing directory, unreadable file).
	ErrIOError = errors.New("runtime I/O error")

	// ErrFatalInit means the process cannot start at all (no usable fonts,
	// SUID detected, backend creation failed). Callers exit nonzero.
	ErrFatalInit = errors.New("fatal initialization error")
)
