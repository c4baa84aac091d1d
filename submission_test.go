package codebench

import "testing"

// The wire enum sequence doubles as the "best status" rank. This pins the
// rank table so nobody "fixes" the TIME_OUT > SUCCESS oddity by accident:
// clients depend on the declared order.
func TestStatusRankOrder(t *testing.T) {
	order := []Status{
		StatusPending,
		StatusEnqueued,
		StatusProcessing,
		StatusBuildError,
		StatusRuntimeError,
		StatusFailure,
		StatusSuccess,
		StatusTimeOut,
	}
	for i, s := range order {
		if s.Rank() != i {
			t.Errorf("%s: rank %d, expected %d", s, s.Rank(), i)
		}
	}
	if len(statusRank) != len(order) {
		t.Errorf("rank table has %d entries, expected %d", len(statusRank), len(order))
	}
}

func TestStatusTerminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusPending:      false,
		StatusEnqueued:     false,
		StatusProcessing:   false,
		StatusBuildError:   true,
		StatusRuntimeError: true,
		StatusFailure:      true,
		StatusSuccess:      true,
		StatusTimeOut:      true,
	}
	for s, want := range terminal {
		if s.Terminal() != want {
			t.Errorf("%s: Terminal() = %v, expected %v", s, s.Terminal(), want)
		}
	}
}

func TestBetterStatus(t *testing.T) {
	if got := BetterStatus(StatusFailure, StatusSuccess); got != StatusSuccess {
		t.Errorf("expected SUCCESS, got %s", got)
	}
	if got := BetterStatus(StatusSuccess, StatusPending); got != StatusSuccess {
		t.Errorf("expected SUCCESS, got %s", got)
	}
	if got := BetterStatus(StatusSuccess, StatusTimeOut); got != StatusTimeOut {
		t.Errorf("expected TIME_OUT, got %s", got)
	}
	if got := Status("bogus").Rank(); got != -1 {
		t.Errorf("unknown status rank = %d, expected -1", got)
	}
}
