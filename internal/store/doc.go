// Package store provides the SQLite-backed log of validation attempts.
//
// A calling application that re-prompts an LLM after failed validation
// records each attempt under a session ID and reads the history back to
// decide whether to keep retrying. The log holds attempt summaries, the
// report and the feedback text; it does not persist decks.
//
// # Invariants
//
// Logical time:
//   - Each session has its own seq counter starting at 1
//   - All ordering uses seq, never timestamps
//   - Queries order by seq ASC, id ASC COLLATE BINARY
//
// Idempotency:
//   - UNIQUE(session_id, content_ir_hash, plan_hash)
//   - Recording the same documents twice in a session returns the first
//     attempt instead of adding a new one
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Document hashes come from internal/ir/hash.go (RFC 8785 canonical JSON,
// SHA-256 with domain separation).
package store
