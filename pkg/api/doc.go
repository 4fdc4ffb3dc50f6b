// Package api defines the domain model, the error taxonomy, and the uniform
// error body shared by every other package. Errors carry a stable
// machine-readable code; the HTTP wire format for any client-facing failure
// is a JSON array of error objects, written at a single boundary point.
package api
