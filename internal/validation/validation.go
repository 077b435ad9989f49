// Package validation binds request data and runs the request's own
// Validate method.
//
// Request types enforce their rules with `validator` struct tags or plain
// checks. Errors that already describe a client-facing outcome are passed
// through untouched; anything else is turned into a 400 with field errors.
package validation
