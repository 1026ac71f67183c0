// Package hash provides keyed digests used to derive cache keys from one-time
// codes, so plaintext codes never reach the cache backend.
package hash
