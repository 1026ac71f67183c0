// Package uid generates identifiers for records and requests.
package uid

// NumberID produces unique, roughly time-ordered int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID produces unique string identifiers.
type StringID interface {
	Generate() string
}
