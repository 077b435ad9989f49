// Package sqlerr specifically handles database driver errors.
//
// It parses cryptic SQLSTATE codes from the driver into a Code, and
// classifies any storage failure into a Kind that is logged and counted
// next to the generic message the client receives.
package sqlerr
