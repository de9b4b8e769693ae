// Package tasks orchestrates storyboard jobs against the storyboard service with real-time progress reporting.
//
// # Core Operations
//
// The [Engine] interface defines two operations:
//
//  1. [Engine.Run] : Full generation job
//     - Submits the description and follows the progress stream
//     - Folds every event into a [progress.State]
//     - Resolves the session of a finished job (explicit id, then storyboard path)
//     - Populates the frame gallery and records the storyboard context for edits
//
//  2. [Engine.Download] : Fetch the artifacts of a session
//     - Downloads every frame image and the storyboard document with a worker pool
//     - Writes manifest.json describing each artifact
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and the progress snapshot
// for UI rendering. Updates use select with default to prevent blocking.
//
// # Job History
//
// The optional [JobRecorder] interface persists every finished job (repositories.HistoryRecorder).
// Recording errors are logged and never fail a job.
//
// # Implementation
//
// [GenerationEngine] implements [Engine] with dependencies on:
//   - [services.Service] : storyboard service client
//   - [models.JobState] : single-flight guard, counters and the resolved session
//   - [gallery.Gallery] : frame cards and selection
package tasks
