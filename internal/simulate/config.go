// Package simulate drives the team balancing service with synthetic rosters
// and checks every returned result against the engine's guarantees.
package simulate

import (
	"time"

	"github.com/okian/teambalance/internal/domain/model"
)

// Config holds configuration for a simulation.
type Config struct {
	BaseURL string        // Base URL of the service
	Players int           // Players per roster
	Runs    int           // Number of rosters to submit
	Workers int           // Concurrent submitters
	Seed    int64         // Seed for roster generation
	Timeout time.Duration // HTTP request timeout
	Mode    model.Mode    // Empty cycles through every mode
	League  model.LeagueConfig
	Roster  RosterOptions
}

// Stats holds simulation statistics.
type Stats struct {
	RunsSubmitted   int
	RunsSucceeded   int
	RunsRejected    int
	RunsFailed      int
	PlayersAssigned int
	PlayersLeftOut  int
	Violations      []Violation
	Duration        time.Duration
}

// Violation is one broken guarantee found in a result.
type Violation struct {
	Run     int    `json:"run"`
	RunID   string `json:"runId,omitempty"`
	Message string `json:"message"`
}
