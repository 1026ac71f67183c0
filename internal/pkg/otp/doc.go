// Package otp generates and matches RFC 4226 (HOTP) and RFC 6238 (TOTP) codes
// from raw seed bytes, and builds otpauth:// provisioning URIs.
//
// The arithmetic is delegated to github.com/pquerna/otp. This package adds the
// asymmetric TOTP drift window and constant-time matching used by the
// verification engine.
package otp
