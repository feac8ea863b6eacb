// Package crashtrap installs process-wide handlers for unrecoverable
// faults and writes a diagnostic artifact before the process dies.
//
// The package implements three cooperating pieces:
//
//   - Installer: one-time, idempotent registration of the platform's fatal
//     fault hook (POSIX signals on unix, the unhandled-exception filter on
//     Windows), with all path resolution and buffer allocation done up
//     front so the fault path never performs risky work.
//
//   - Fatal handler: guarded against re-entry by an atomic flag, it writes
//     an ordered artifact (system header, fault description, recent log,
//     raw backtrace) and then drives gdb as a subprocess for an extended
//     backtrace with per-frame locals, disassembly and registers.
//
//   - Terminal re-raise: after capture the original fault is re-raised
//     with default disposition, so exit status and core-dump behavior are
//     exactly what they would have been without the handler.
//
// Everything in the package is best-effort: a missing debugger, an
// unwritable directory or a failing subprocess degrade to explanatory
// notes in the artifact, never to a secondary crash.
package crashtrap
