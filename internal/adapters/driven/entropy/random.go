package entropy

import (
	"crypto/rand"
	"fmt"

	"github.com/waterapps/portal/internal/core/ports/driven"
)

// Ensure Source implements RandomSource.
var _ driven.RandomSource = Source{}

// Source reads from the operating system's CSPRNG.
type Source struct{}

// Bytes returns n random bytes.
func (Source) Bytes(n int) ([]byte, error) {
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("read random bytes: %w", err)
	}
	return b, nil
}
