// Package kafkasink publishes dashAuth audit events to a Kafka topic.
//
// Each event becomes one record: the JSON-encoded event as value, the user ID
// (or masked email) as key, and the event type as an "event_type" header.
// Produce is asynchronous; delivery failures are counted and logged, never
// returned to the Engine.
//
// # What this package must NOT do
//
//   - Block the audit dispatcher on broker acknowledgement.
//   - Publish unmasked email addresses.
package kafkasink
