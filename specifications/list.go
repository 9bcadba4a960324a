package specifications

import (
	"strings"
	"testing"

	"github.com/alecthomas/assert/v2"
)

type Lister interface {
	Locator() string
	List() (string, error)
}

// List asserts that listing the driver's locator prints exactly want, in order.
func List(t *testing.T, driver Lister, want []string) {
	t.Helper()

	out, err := driver.List()
	assert.NoError(t, err)

	assert.Equal(t, want, lines(out))
}

func lines(out string) []string {
	out = strings.TrimSuffix(out, "\n")
	if out == "" {
		return nil
	}
	return strings.Split(out, "\n")
}
