// Package bot contains the live-session monitoring engine.
//
// The Supervisor runs a single long-lived loop: it detects whether the
// configured channel has an active live broadcast, resolves its chat id,
// and while the session lasts it polls chat messages, filters repeats,
// routes each message through the command dispatcher, posts the resulting
// replies, and emits a periodic announcement. Every inbound and outbound
// message is recorded through the LogSink (a bounded in-memory ring plus a
// best-effort durable store).
//
// Session-scoped state (the SeenSet dedup ledger and the announcement
// timer) is reset when a session starts and discarded when it ends; a
// failure inside a session always falls back to detection rather than
// resuming mid-session. The only state shared with the HTTP layer is the
// Status snapshot, which is written by the supervisor alone and guarded by
// a mutex.
package bot
