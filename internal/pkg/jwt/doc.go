// Package jwt issues and verifies the service tokens that callers present to
// the twofactor HTTP API.
//
// Tokens are HS512-signed and carry the calling service name plus its scopes.
// Context helpers store the verified claims for downstream handlers.
package jwt
