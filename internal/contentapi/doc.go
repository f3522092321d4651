// Package contentapi is a thin HTTP client for the scripture content API.
//
// The client mirrors the endpoints the publisher needs: password login and
// admin provisioning, project listing and creation, sutra creation, the
// per-field entry endpoints, and multipart audio upload. Every call is a
// single request; there are no retries. Non-success responses are returned
// as *StatusError so callers can log the status code and body.
package contentapi
