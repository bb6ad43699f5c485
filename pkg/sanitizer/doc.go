// Package sanitizer provides input normalization for identifiers and lock
// reference data.
//
// All functions are idempotent. Invalid input is returned in a form the
// validator will reject rather than as an error.
package sanitizer
