// Package gateway dispatches authenticated requests to the Google Drive and
// Google Sheets REST APIs.
//
// A Dispatcher acquires a fresh credential for every request, sends it with a
// per-call bearer transport and turns whatever happens into exactly one
// Outcome:
//
//   - Success: a 2xx response with a JSON body
//   - BinarySuccess: a 2xx response with any other body
//   - *Failure: everything else, classified by Kind
//
// Failures are never retried. The closed set of failure kinds is the error
// taxonomy shared by every tool the server exposes.
package gateway
