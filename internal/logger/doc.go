// Package logger provides logging facilities for the commitbuddy application.
//
// It separates two audiences. Debug entries (Info, Warning, Error) go to a
// log file written through a zap core; user-facing lines (InfoToUser,
// WarningToUser, Success, StatusMessage) go to stdout with an emoji prefix and
// optional colour from package ui.
//
// # Core Components
//
// - Logger: the interface injected into every component that logs
// - DefaultLogger: the zap-backed implementation
//
// # Message Types
//
// - Info: debug information, file only (mirrored to stdout with --verbose)
// - Warning: potential issues, file only (mirrored to stdout with --verbose)
// - Error: failures, file and stderr
// - InfoToUser / WarningToUser / Success: file and stdout
// - StatusMessage: stdout only, never logged
//
// # File Logging
//
// File logging is enabled with --debug. Entries use zap's console encoder with
// ISO8601 timestamps and carry a per-run "session" field so interleaved runs
// against the same repository can be told apart:
//
//	2026-03-02T10:04:11.201+0100	INFO	staged 3 file(s)	{"session": "5d0c..."}
//
// # Usage
//
//	log := logger.New(cfg.Debug, cfg.LogFile, cfg.Verbose)
//	defer log.Close()
//
//	log.Info("requesting candidate message from %s", cfg.Model)
//	log.InfoToUser("Analyzing staged changes...")
//	log.Success("Commit %s created: %s", hash, summary)
//
// There is no package-level logger; components receive a Logger through
// their constructors.
//
// # Thread Safety
//
// DefaultLogger is safe for concurrent use.
package logger
