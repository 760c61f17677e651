package engine

import (
	"regexp"
	"strconv"
	"strings"
)

// Indicator vocabularies for judging loosely structured response text.
// These are matched as lowercase substrings; error indicators always win
// over success indicators. Downstream behavior depends on the exact sets,
// so extend with care.
var errorIndicators = []string{
	"error",
	"failed",
	"invalid",
	"unknown",
	"cannot",
	"no player",
	"permission",
}

var successIndicators = []string{
	"successfully",
	"filled",
	"set to",
	"teleported",
	"changed",
	"summoned",
	"given",
}

// responseOK judges a raw response string as success or failure. Empty
// responses fail here; commands known to legitimately answer with nothing
// should be executed unverified instead.
func responseOK(resp string) bool {
	low := strings.ToLower(resp)
	for _, ind := range errorIndicators {
		if strings.Contains(low, ind) {
			return false
		}
	}
	for _, ind := range successIndicators {
		if strings.Contains(low, ind) {
			return true
		}
	}
	return strings.TrimSpace(resp) != ""
}

var (
	blockCountRE = regexp.MustCompile(`(?i)(\d+)\s*block`)
	anyCountRE   = regexp.MustCompile(`\b(\d+)\b`)
)

// parseUnits extracts the affected-unit count from a response. It prefers
// an explicit "<n> block(s)" form and falls back to the first integer in
// the text. The second return reports whether anything was parsed.
func parseUnits(resp string) (int, bool) {
	if m := blockCountRE.FindStringSubmatch(resp); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	if m := anyCountRE.FindStringSubmatch(resp); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil {
			return n, true
		}
	}
	return 0, false
}
