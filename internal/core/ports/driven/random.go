package driven

// RandomSource provides cryptographically secure random bytes.
// Implementations must never fall back to a non-secure generator.
type RandomSource interface {
	// Bytes returns n random bytes.
	Bytes(n int) ([]byte, error)
}
