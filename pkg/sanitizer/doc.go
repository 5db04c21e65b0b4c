// Package sanitizer normalizes free-form request input before validation and
// storage.
//
// All functions are idempotent: applying them twice gives the same result as
// applying them once. Invalid input is never an error here; it normalizes to
// the empty string and validation decides what to do with it.
package sanitizer
