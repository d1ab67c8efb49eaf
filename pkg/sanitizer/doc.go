// Package sanitizer normalizes guest-supplied input before validation and
// storage.
//
// All functions are idempotent - applying them twice produces the same
// result - and degrade gracefully, returning empty strings or slices rather
// than errors.
//
// Normalization includes:
//   - Strings: collapse internal whitespace, trim leading/trailing spaces
//   - Phone numbers: convert to E.164 format (+[country][number])
//   - Labels (room types, amenities): lowercase after whitespace cleanup
//   - Slices: drop empties and duplicates after normalization
package sanitizer
