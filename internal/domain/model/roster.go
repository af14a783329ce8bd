// Package model contains the roster and result records passed between the
// engine stages and the adapters around them.
package model

import "fmt"

// Gender is the closed set of genders tracked for quota purposes.
type Gender string

// Known genders.
const (
	GenderMale   Gender = "M"
	GenderFemale Gender = "F"
	GenderOther  Gender = "Other"
)

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	switch g {
	case GenderMale, GenderFemale, GenderOther:
		return true
	}
	return false
}

// MaxGroupSize caps explicit and inferred placement units.
const MaxGroupSize = 4

// Player is a single roster entry as supplied by ingestion.
type Player struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Gender Gender `json:"gender"`

	// SkillRating is the base rating in [0,10].
	SkillRating float64 `json:"skillRating"`
	// OverrideSkill replaces SkillRating when set. nil means "not set",
	// which is distinct from an override of 0.
	OverrideSkill *float64 `json:"overrideSkill,omitempty"`

	// TeammateRequests is ordered: the first entry is the must-have request,
	// the rest are nice-to-have.
	TeammateRequests []string `json:"teammateRequests,omitempty"`
	AvoidRequests    []string `json:"avoidRequests,omitempty"`

	IsHandler bool   `json:"isHandler,omitempty"`
	GroupID   string `json:"groupId,omitempty"`
}

// MustHave returns the must-have request name, if any.
func (p *Player) MustHave() (string, bool) {
	if len(p.TeammateRequests) == 0 {
		return "", false
	}
	return p.TeammateRequests[0], true
}

// PlayerGroup is an explicit, externally created cluster of players that must
// share a team.
type PlayerGroup struct {
	ID        string   `json:"id"`
	Label     string   `json:"label,omitempty"`
	PlayerIDs []string `json:"playerIds"`
}

// LeagueConfig carries the hard limits for one generation run.
type LeagueConfig struct {
	MaxTeamSize int `json:"maxTeamSize" koanf:"max_team_size"`
	MinFemales  int `json:"minFemales" koanf:"min_females"`
	MinMales    int `json:"minMales" koanf:"min_males"`
	// TargetTeams forces the team count when > 0.
	TargetTeams int `json:"targetTeams,omitempty" koanf:"target_teams"`
	// RequireMixedGender raises both gender floors to at least one.
	RequireMixedGender bool `json:"requireMixedGender,omitempty" koanf:"require_mixed_gender"`
}

// Floors returns the effective per-team gender floors.
func (c LeagueConfig) Floors() (females, males int) {
	females, males = c.MinFemales, c.MinMales
	if c.RequireMixedGender {
		females = max(females, 1)
		males = max(males, 1)
	}
	return females, males
}

// Mode selects the assignment strategy.
type Mode string

// Assignment modes.
const (
	ModeBalanced   Mode = "balanced"
	ModeRandomized Mode = "randomized"
	ModeManual     Mode = "manual"
)

// ParseMode converts a string into a Mode. The empty string maps to balanced.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case "", ModeBalanced:
		return ModeBalanced, nil
	case ModeRandomized:
		return ModeRandomized, nil
	case ModeManual:
		return ModeManual, nil
	}
	return "", fmt.Errorf("unknown mode %q", s)
}
