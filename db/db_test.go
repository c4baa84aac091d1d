package db

import (
	"testing"
)

func TestPoolConfig(t *testing.T) {
	config, err := poolConfig("sslmode=disable host=localhost user=codebench dbname=codebench")
	if err != nil {
		t.Fatalf("poolConfig errored: %v", err)
	}
	if config.MaxConns != 20 {
		t.Errorf("MaxConns = %d, expected 20", config.MaxConns)
	}
	// The decimal codec registration rides this hook. Losing it silently
	// breaks scanning activity points into decimal.Decimal.
	if config.AfterConnect == nil {
		t.Error("AfterConnect hook not set")
	}
}

func TestPoolConfigBadDSN(t *testing.T) {
	if _, err := poolConfig("://not-a-dsn"); err == nil {
		t.Error("expected an error for a malformed DSN")
	}
}

func TestFormatLimitOffset(t *testing.T) {
	tests := []struct {
		limit, offset int
		expected      string
	}{
		{0, 0, ""},
		{10, 0, "LIMIT 10"},
		{10, 5, "LIMIT 10 OFFSET 5"},
		{0, 5, "OFFSET 5"},
	}
	for _, test := range tests {
		if got := FormatLimitOffset(test.limit, test.offset); got != test.expected {
			t.Errorf("FormatLimitOffset(%d, %d) = %q, expected %q", test.limit, test.offset, got, test.expected)
		}
	}
}
