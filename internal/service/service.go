// Package service holds the issue operations.
//
// Handlers pass it bound requests; it applies the issue rules (required
// fields, defaults, patch semantics, timestamps) and talks to the store
// through repository.IssueStore. Failures come back as *errs.ResultError.
package service
