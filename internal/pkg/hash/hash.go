package hash

// Hash digests a plaintext and verifies a plaintext against a digest.
type Hash interface {
	Hash(str string) ([]byte, error)
	Verify(hashed, str string) bool
}
