// Package tally counts votes and decides voting outcomes.
package tally

import "munhub/models"

type Counts struct {
	Yes     int
	No      int
	Abstain int
}

func (c Counts) Total() int {
	return c.Yes + c.No + c.Abstain
}

// Count tallies one vote per entry. Votings keep a single entry per country,
// so this is also one vote per country.
func Count(votes []models.Vote) Counts {
	var c Counts
	for _, v := range votes {
		switch v.Choice {
		case models.VoteYes:
			c.Yes++
		case models.VoteNo:
			c.No++
		case models.VoteAbstain:
			c.Abstain++
		}
	}
	return c
}

// Decide applies the required majority. A qualified majority needs at least
// two thirds of the non-abstaining votes and at least one such vote.
func Decide(c Counts, majority models.Majority) models.VotingResult {
	if majority == models.MajorityQualified {
		nonAbstain := c.Yes + c.No
		if nonAbstain > 0 && c.Yes*3 >= nonAbstain*2 {
			return models.ResultAccepted
		}
		return models.ResultRejected
	}
	if c.Yes > c.No {
		return models.ResultAccepted
	}
	return models.ResultRejected
}

// IsVeto reports whether a vote by country kills the voting outright: a "no"
// on a resolution from a veto holder of a Security Council type committee.
func IsVeto(committee *models.Committee, voting *models.Voting, country string, choice models.VoteChoice) bool {
	if committee.Type != models.CommitteeSecurityCouncil || voting.Target != models.TargetResolution {
		return false
	}
	if choice != models.VoteNo {
		return false
	}
	seat, ok := committee.Country(country)
	return ok && seat.HasVetoRight
}

// Stats is the summary broadcast with a finalized voting.
type Stats struct {
	TotalVotes   int                 `json:"totalVotes"`
	YesVotes     int                 `json:"yesVotes"`
	NoVotes      int                 `json:"noVotes"`
	AbstainVotes int                 `json:"abstainVotes"`
	Result       models.VotingResult `json:"result"`
}

func NewStats(c Counts, result models.VotingResult) Stats {
	return Stats{
		TotalVotes:   c.Total(),
		YesVotes:     c.Yes,
		NoVotes:      c.No,
		AbstainVotes: c.Abstain,
		Result:       result,
	}
}
