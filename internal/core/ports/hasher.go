package ports

// PasswordHasher isolates the hashing algorithm from the identity service.
// Hash salts every call, so two digests of the same plaintext differ and
// equality is never a string comparison. Verify must not leak timing
// proportional to the position of a mismatch.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}
