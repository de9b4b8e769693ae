// Package models defines the data shared by every stage of the storyboard client.
//
// The package contains three groups of types:
//
// 1. Stream events: the sealed [Event] variant decoded from the service's progress stream
//   - [StepStart], [StepProgress], [StepComplete] : per-phase progress
//   - [Complete], [Failure] : terminal job outcomes
//
// 2. Job state: the process-wide [JobState] with its two in-flight [Guard]s, plus the
// renderable [ProgressStep] and [FrameCard] entities.
//
// 3. Wire payloads: [GenerateRequest], [EditRequest], [EditResponse] and [Health] as exchanged with the service,
// and [JobRecord] as stored in the history database.
package models
