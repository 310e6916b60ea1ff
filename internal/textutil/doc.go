// Package textutil provides text helpers shared by the media index backends,
// the transfer queue, and chat rendering.
//
// The primary use cases are:
//   - Case-insensitive substring matching that also folds non-ASCII letters
//   - Escaping user input for SQL LIKE patterns
//   - Sanitizing display names for storage targets
//   - Truncating long values for log previews
package textutil
