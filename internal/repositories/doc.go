// Package repositories implements SQLite persistence for storyboard job history.
//
// History is an opt-in log: nothing here is read back to resume a job, only to list past
// jobs and to recover the storyboard context of a session for later edits.
//
// Key Implementations:
//   - [JobRepository] : finished generation jobs with soft delete and session lookups
//   - [EditRepository] : frame edits submitted against a session
//   - [HistoryRecorder] : adapter satisfying tasks.JobRecorder and edit.Recorder
//
// Sequence numbers provide stable, human-readable ordering (e.g. job #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
