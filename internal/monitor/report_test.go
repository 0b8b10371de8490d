package monitor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlagDelinquents(t *testing.T) {
	addrToFedkey := map[string]string{"A": "PKA", "B": "PKB"}
	tallies := map[string]*VoteTally{
		// No vote on all of 5, 4 and 3: flagged.
		"A": {NoVote: []uint32{3, 4, 5}},
		// Voted yes on 3: not flagged.
		"B": {NoVote: []uint32{4, 5}, Yes: []uint32{3}},
	}

	assert.Equal(t, []string{"PKA"}, FlagDelinquents(tallies, addrToFedkey, 5))
}

func TestFlagDelinquentsSorted(t *testing.T) {
	addrToFedkey := map[string]string{"z": "zzz111", "a": "aaa999"}
	tallies := map[string]*VoteTally{
		"z": {NoVote: []uint32{3, 4, 5}},
		"a": {NoVote: []uint32{3, 4, 5}},
	}

	assert.Equal(t, []string{"aaa999", "zzz111"}, FlagDelinquents(tallies, addrToFedkey, 5))
}

func TestFormatReport(t *testing.T) {
	got := FormatReport([]string{"zzz111", "aaa999"})
	want := "**The following fedkeys were eligible and have not voted for the last 3 completed proposal votes:**\n" +
		"- aaa999\n" +
		"- zzz111"
	assert.Equal(t, want, got)
}

func TestFormatReportEmpty(t *testing.T) {
	assert.Equal(t, ReportHeader, FormatReport(nil))
}
