// Package server exposes the annotator over HTTP.
//
// A single endpoint compares two documents:
//
//	GET /?a=<base64>&b=<base64>[&mode=line|word|char]
//
// The response body is the annotated report if the documents differ, or
// "input is the same" otherwise, in both cases with status 200. Requests
// missing a document, selecting an unknown mode or carrying documents that
// are not base64-encoded UTF-8 text are rejected with status 400 before any
// comparison happens. GET /health answers "ok".
package server
