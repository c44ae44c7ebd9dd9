package nodeprobe

import (
	"context"
	"testing"
)

// testContext returns a context canceled when the test ends, standing in for
// testing.T.Context, which requires Go 1.24.
func testContext(tb testing.TB) context.Context {
	ctx, cancel := context.WithCancel(context.Background())
	tb.Cleanup(cancel)
	return ctx
}
