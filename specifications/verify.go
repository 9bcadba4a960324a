package specifications

import (
	"fmt"
	"testing"

	"github.com/alecthomas/assert/v2"
)

type Verifier interface {
	Locator() string
	Verify() (string, error)
}

// Verify asserts that verifying the driver's locator succeeds and reports files files.
func Verify(t *testing.T, driver Verifier, files int) {
	t.Helper()

	out, err := driver.Verify()
	assert.NoError(t, err)

	assert.Contains(t, out, fmt.Sprintf("verified %d files", files))
}
