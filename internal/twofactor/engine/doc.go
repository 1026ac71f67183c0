// Package engine verifies second-factor codes and drives the credential
// lifecycle.
//
// The engine never persists anything. CheckAuthCode and the lifecycle helpers
// mutate the in-memory TokenRecord they are given and report what changed; the
// caller saves or deletes the record. Replay and attempt bookkeeping live in a
// cache.Cache that only offers get and set-with-TTL, so that bookkeeping is
// best effort under concurrent attempts for the same owner.
package engine
