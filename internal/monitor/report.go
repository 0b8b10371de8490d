package monitor

import (
	"sort"
	"strings"
)

// ReportHeader is the fixed first line of the delinquency report.
const ReportHeader = "**The following fedkeys were eligible and have not voted for the last 3 completed proposal votes:**"

// FlagDelinquents returns the fedkeys of addresses that cast no vote on any
// of the last three completed proposals (best, best-1, best-2), sorted
// lexicographically.
func FlagDelinquents(tallies map[string]*VoteTally, addrToFedkey map[string]string, best uint32) []string {
	var flagged []string
	for addr, tally := range tallies {
		if containsID(tally.NoVote, best) && containsID(tally.NoVote, best-1) && containsID(tally.NoVote, best-2) {
			flagged = append(flagged, addrToFedkey[addr])
		}
	}
	sort.Strings(flagged)
	return flagged
}

func containsID(ids []uint32, id uint32) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// FormatReport renders the flagged fedkeys as a markdown report: the fixed
// header, then one "- <fedkey>" bullet per key in sorted order.
func FormatReport(flagged []string) string {
	lines := make([]string, 0, len(flagged)+1)
	lines = append(lines, ReportHeader)

	sorted := make([]string, len(flagged))
	copy(sorted, flagged)
	sort.Strings(sorted)
	for _, fedkey := range sorted {
		lines = append(lines, "- "+fedkey)
	}
	return strings.Join(lines, "\n")
}
