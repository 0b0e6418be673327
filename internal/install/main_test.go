package install

import (
	"testing"

	"go.uber.org/goleak"
)

// The npm installer streams subprocess output; every test must leave no
// copying goroutines behind.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
