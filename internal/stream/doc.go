// Package stream decodes the storyboard service's progress stream.
//
// The service answers a generation request with a long-lived response whose body is a
// sequence of "data: {json}" records separated by newlines. Records may be split across
// arbitrary network chunks; [Decoder] reassembles lines and [ParseLine] turns each line into
// a [models.Event]. [EventReader] combines both over an [io.Reader].
package stream
