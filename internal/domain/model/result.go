package model

import "time"

// GenderBreakdown counts players per gender.
type GenderBreakdown struct {
	Males   int `json:"males"`
	Females int `json:"females"`
	Others  int `json:"others"`
}

// Add counts one player of gender g.
func (b *GenderBreakdown) Add(g Gender) {
	switch g {
	case GenderMale:
		b.Males++
	case GenderFemale:
		b.Females++
	default:
		b.Others++
	}
}

// Team is one generated team.
type Team struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Players      []Player        `json:"players"`
	AverageSkill float64         `json:"averageSkill"`
	Genders      GenderBreakdown `json:"genderBreakdown"`
	HandlerCount int             `json:"handlerCount"`
}

// ConflictType tags a RequestConflict.
type ConflictType string

// Conflict types.
const (
	ConflictAvoidVsRequest ConflictType = "avoid-vs-request"
	ConflictOneWayRequest  ConflictType = "one-way-request"
)

// RequestConflict is a tension between preferences that the engine reports
// rather than resolves.
type RequestConflict struct {
	Type ConflictType `json:"type"`
	// PlayerID made the teammate request.
	PlayerID string `json:"playerId"`
	// TargetID is the requested teammate.
	TargetID string `json:"targetId"`
	// AvoiderID is the player whose avoid request collides, if any.
	AvoiderID string `json:"avoiderId,omitempty"`
	// AvoidedID is the player being avoided, if any.
	AvoidedID string `json:"avoidedId,omitempty"`
	Message   string `json:"message"`
}

// NearMissReason tags a NearMissGroup.
type NearMissReason string

// Near-miss reasons.
const (
	ReasonGroupTooLarge       NearMissReason = "group-too-large"
	ReasonAvoidConflict       NearMissReason = "avoid-conflict"
	ReasonWouldExceedTeamSize NearMissReason = "would-exceed-team-size"
	ReasonNoEligibleTeam      NearMissReason = "no-eligible-team"
)

// NearMissGroup is a placement unit that could not be honored intact.
type NearMissGroup struct {
	Reason    NearMissReason `json:"reason"`
	GroupID   string         `json:"groupId,omitempty"`
	PlayerIDs []string       `json:"playerIds"`
	Message   string         `json:"message"`
}

// UnfulfilledReason tags an UnfulfilledRequest.
type UnfulfilledReason string

// Unfulfilled reasons.
const (
	UnfulfilledNonReciprocal UnfulfilledReason = "non-reciprocal"
	UnfulfilledGroupFull     UnfulfilledReason = "group-full"
	UnfulfilledAvoidConflict UnfulfilledReason = "avoid-conflict"
	UnfulfilledUnknownPlayer UnfulfilledReason = "unknown-player"
	UnfulfilledUnplaced      UnfulfilledReason = "unplaced"

	// UnfulfilledPreferencesIgnored marks requests in modes that do not
	// consider preferences at all.
	UnfulfilledPreferencesIgnored UnfulfilledReason = "preferences-ignored"
	// UnfulfilledNoRoom marks a mutual pair split because no team could
	// take them together.
	UnfulfilledNoRoom UnfulfilledReason = "no-room"
)

// UnfulfilledRequest records one teammate name a player did not get.
type UnfulfilledRequest struct {
	PlayerID      string            `json:"playerId"`
	RequestedName string            `json:"requestedName"`
	MustHave      bool              `json:"mustHave"`
	Reason        UnfulfilledReason `json:"reason"`
}

// IssueKind tags a data integrity issue.
type IssueKind string

// Integrity issue kinds.
const (
	IssueDuplicatePlayer          IssueKind = "duplicate-player"
	IssueUnknownGroupMember       IssueKind = "unknown-group-member"
	IssueUnknownGroupReference    IssueKind = "unknown-group-reference"
	IssueDuplicateGroupMembership IssueKind = "duplicate-group-membership"
	IssueDuplicateGroup           IssueKind = "duplicate-group"
)

// Issue is an invalid reference the engine dropped. Callers log these.
type Issue struct {
	Kind     IssueKind `json:"kind"`
	PlayerID string    `json:"playerId,omitempty"`
	GroupID  string    `json:"groupId,omitempty"`
	Message  string    `json:"message"`
}

// Stats summarises one run.
type Stats struct {
	TotalPlayers          int           `json:"totalPlayers"`
	AssignedPlayers       int           `json:"assignedPlayers"`
	UnassignedPlayers     int           `json:"unassignedPlayers"`
	MutualRequestsHonored int           `json:"mutualRequestsHonored"`
	MutualRequestsBroken  int           `json:"mutualRequestsBroken"`
	NiceToHaveHonored     int           `json:"niceToHaveHonored"`
	AvoidRequestsViolated int           `json:"avoidRequestsViolated"`
	TeamSkillSpread       float64       `json:"teamSkillSpread"`
	TeamSkillStdDev       float64       `json:"teamSkillStdDev"`
	HandlerSpread         int           `json:"handlerSpread"`
	GenderShortfallTeams  int           `json:"genderShortfallTeams"`
	DissolvedTeams        int           `json:"dissolvedTeams"`
	GenerationTime        time.Duration `json:"generationTime"`
}

// Result is the immutable snapshot returned by one engine invocation.
type Result struct {
	Mode              Mode                 `json:"mode"`
	Seed              int64                `json:"seed"`
	GeneratedAt       time.Time            `json:"generatedAt"`
	Teams             []Team               `json:"teams"`
	UnassignedPlayers []Player             `json:"unassignedPlayers"`
	Stats             Stats                `json:"stats"`
	Conflicts         []RequestConflict    `json:"conflicts"`
	NearMisses        []NearMissGroup      `json:"nearMisses"`
	Unfulfilled       []UnfulfilledRequest `json:"unfulfilledRequests"`
	Issues            []Issue              `json:"issues"`
}
