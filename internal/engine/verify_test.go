package engine

import "testing"

func TestResponseOK(t *testing.T) {
	cases := []struct {
		resp string
		ok   bool
	}{
		{"Successfully filled 4096 blocks", true},
		{"Gamerule doMobSpawning is currently set to: false", true},
		{"Teleported Steve to 0, 64, 0", true},
		{"some unrecognized but present text", true},
		{"", false},
		{"   ", false},
		{"Unknown command: flil", false},
		{"An unexpected error occurred", false},
		{"Invalid block type", false},
		{"No player was found", false},
		{"You do not have permission to use this command", false},
		// Error indicators take precedence over success indicators.
		{"cannot fill — error: out of range, successfully aborted", false},
		{"Successfully failed to comply", false},
	}
	for _, c := range cases {
		if got := responseOK(c.resp); got != c.ok {
			t.Fatalf("responseOK(%q) = %v, want %v", c.resp, got, c.ok)
		}
	}
}

func TestParseUnits(t *testing.T) {
	cases := []struct {
		resp  string
		n     int
		found bool
	}{
		{"Successfully filled 4096 blocks", 4096, true},
		{"Successfully filled 1 block", 1, true},
		{"Changed 250 blocks", 250, true},
		{"Teleported 3 players", 3, true},
		{"done", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		n, found := parseUnits(c.resp)
		if n != c.n || found != c.found {
			t.Fatalf("parseUnits(%q) = (%d, %v), want (%d, %v)", c.resp, n, found, c.n, c.found)
		}
	}
}
