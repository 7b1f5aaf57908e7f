package monitoring

import "testing"

func TestSetLoggerRedirectsAndMutes(t *testing.T) {
	original := Logf
	defer func() { Logf = original }()

	var got string
	SetLogger(func(format string, v ...interface{}) { got = format })
	Logf("redirected %d", 1)
	if got != "redirected %d" {
		t.Fatalf("custom logger not called, got %q", got)
	}

	SetLogger(nil)
	Logf("must not panic")
}

func TestDebugfIsGated(t *testing.T) {
	original := Logf
	defer func() {
		Logf = original
		SetDebug(false)
	}()

	calls := 0
	SetLogger(func(format string, v ...interface{}) { calls++ })

	Debugf("suppressed by default")
	if calls != 0 {
		t.Fatalf("Debugf emitted with debug disabled")
	}

	SetDebug(true)
	Debugf("emitted when enabled")
	if calls != 1 {
		t.Fatalf("Debugf did not emit with debug enabled, calls=%d", calls)
	}

	SetDebug(false)
	Debugf("suppressed again")
	if calls != 1 {
		t.Fatalf("Debugf emitted after debug disabled, calls=%d", calls)
	}
}
