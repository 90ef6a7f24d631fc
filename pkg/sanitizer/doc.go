// Package sanitizer normalizes user input before validation and storage.
//
// All functions are idempotent: applying them twice gives the same result as
// applying them once. Invalid input degrades to an empty string rather than an error,
// leaving the rejection to validation.
package sanitizer
