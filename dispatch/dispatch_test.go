package dispatch_test

import (
	"testing"

	"github.com/codebench-edu/codebench/dispatch"
)

func TestMessageBody(t *testing.T) {
	if got := dispatch.MessageBody(42, "python3.11"); got != "42 python3.11" {
		t.Errorf("body = %q", got)
	}
	if got := dispatch.MessageBody(7, "gcc13 c17"); got != "7 gcc13 c17" {
		t.Errorf("body = %q", got)
	}
}
