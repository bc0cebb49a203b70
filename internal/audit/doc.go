// Package audit dispatches session events asynchronously to pluggable sinks.
//
// # Components
//
//   - [Sink] is the consumer interface (channel, JSON writer, slog, fan-out, no-op).
//   - [Dispatcher] is a buffered async relay with drop-if-full or block-if-full behavior.
//   - [Event] is the structured record: type, user, masked email, phase, status, metadata.
//
// # Architecture boundaries
//
// This package owns event buffering and sink delivery. It does NOT decide which events
// to emit; that responsibility belongs to the Engine.
//
// # What this package must NOT do
//
//   - Filter or suppress events based on business logic.
//   - Import dashAuth or any sibling internal package.
//   - Perform network I/O beyond what a caller-supplied Sink does.
package audit
