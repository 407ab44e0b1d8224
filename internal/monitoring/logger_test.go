package monitoring

import (
	"fmt"
	"testing"
)

func TestSetLoggerRedirects(t *testing.T) {
	defer SetLogger(nil)

	var got string
	SetLogger(func(format string, v ...interface{}) {
		got = fmt.Sprintf(format, v...)
	})

	Logf("processed %d zones", 4)
	if got != "processed 4 zones" {
		t.Errorf("expected redirected message, got %q", got)
	}
}

func TestSetLoggerNilMutes(t *testing.T) {
	defer SetLogger(func(format string, v ...interface{}) {})
	SetLogger(nil)
	// Must not panic.
	Logf("muted %s", "message")
}
