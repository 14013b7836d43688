// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package planner

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Package-level log state. cordwain runs are single-threaded (one
// materialization run per process), but the sink is mutex-guarded so test
// helpers can swap it safely.
var (
	logMu        sync.Mutex
	logSink      *os.File
	currentPhase string
)

// setPhase tags subsequent log lines with a phase name (decompose,
// materialize, link).
func setPhase(phase string) {
	logMu.Lock()
	defer logMu.Unlock()
	currentPhase = phase
}

func clearPhase() { setPhase("") }

// openLogSink starts mirroring log output to a file, creating parent
// directories as needed. Returns an error if the file cannot be opened;
// callers treat that as a warning, not a failure.
func openLogSink(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening log sink: %w", err)
	}
	logMu.Lock()
	defer logMu.Unlock()
	logSink = f
	return nil
}

// closeLogSink stops file mirroring and closes the sink.
func closeLogSink() {
	logMu.Lock()
	defer logMu.Unlock()
	if logSink != nil {
		logSink.Close() // nolint:errcheck // best-effort on shutdown
		logSink = nil
	}
}

// StartRunLog opens the scratch-dir log sink for one run and returns a
// closer. Failure to open the sink is a warning: the run proceeds with
// stderr logging only.
func StartRunLog(cfg Config) func() {
	cfg.applyDefaults()
	path := filepath.Join(cfg.ScratchDir, "logs", time.Now().Format("2006-01-02-15-04-05")+"-run.log")
	if err := openLogSink(path); err != nil {
		logf("warning: could not open run log: %v", err)
		return func() {}
	}
	return closeLogSink
}

// logf writes a timestamped line to stderr and, when a sink is open, to
// the run's log file.
func logf(format string, args ...any) {
	logMu.Lock()
	defer logMu.Unlock()

	prefix := time.Now().Format("15:04:05")
	if currentPhase != "" {
		prefix += " [" + currentPhase + "]"
	}
	line := fmt.Sprintf(prefix+" "+format+"\n", args...)
	fmt.Fprint(os.Stderr, line)
	if logSink != nil {
		fmt.Fprint(logSink, line) // nolint:errcheck // best-effort mirror
	}
}
