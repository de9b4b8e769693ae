// Package ui implements an interactive terminal interface using bubbletea's Elm architecture.
//
// The TUI provides a multi-view workflow for storyboard generation:
//  1. [InputView] : Describe the storyboard
//  2. [GeneratingView] : Monitor per-step progress streamed from the service
//  3. [GalleryView] : Browse frames, select one, open the PDF
//  4. [EditView] : Describe a change to the selected frame and apply it
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress updates flow through a channel from the GenerationEngine, providing non-blocking status reporting during jobs.
// Notices from jobs and edits appear as toasts that clear themselves after a few seconds.
package ui
