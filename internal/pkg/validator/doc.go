// Package validator validates request structs with go-playground/validator
// and reports failures keyed by their JSON field names.
//
// Custom tags:
//   - otpcode: a non-empty string of ASCII digits
//   - gridkey: 11 characters of [0-9a-zA-Z] (10 body + 1 checksum)
package validator
