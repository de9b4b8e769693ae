// Package services talks to the remote storyboard service over HTTP.
//
// # Service Interface
//
// [Service] is the abstraction the rest of the client depends on. [StoryboardClient] implements it
// on top of [APIService], a thin raw-request layer.
//
// # Endpoints
//
//   - POST generate path : starts a job and streams "data: {json}" progress records
//   - POST edit path : edits one frame; the JSON answer is read even for error status codes
//   - GET health path : service status
//   - GET {output-root}/{session}/... : frame images and the storyboard document
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrAPIRequest] : the service answered with a non-success status
//   - [shared.ErrServiceUnavailable] : the health endpoint reported an unhealthy service
//   - [shared.ErrNotFound] : an artifact does not exist
//
// Transport failures are returned wrapped so callers can tell them apart from service answers.
package services
