// Package seedcipher encrypts raw one-time-password seeds for storage.
//
// The stored form is "<salt>$<hex ciphertext>". Each value draws a fresh
// 16 character salt, and the AES-256 key is SHA-256(globalKey || salt).
// Blocks are encrypted independently. A seed whose length is not a block
// multiple is padded with a single NUL byte followed by random printable
// filler, and decryption truncates at the first NUL.
//
// A seed that itself contains a NUL byte therefore decrypts truncated. That
// limitation is part of the stored format and existing records depend on it,
// so callers that derive seeds (see package gridcard) must keep NUL out.
package seedcipher
