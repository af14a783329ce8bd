// Package repository persists generated runs.
package repository

import (
	"context"
	"time"

	"github.com/okian/teambalance/internal/domain/model"
)

// Run is one stored engine result.
type Run struct {
	ID        string
	CreatedAt time.Time
	Result    *model.Result
}

// Summary is the listing view of a stored run.
type Summary struct {
	ID                string     `json:"id"`
	CreatedAt         time.Time  `json:"createdAt"`
	Mode              model.Mode `json:"mode"`
	Teams             int        `json:"teams"`
	AssignedPlayers   int        `json:"assignedPlayers"`
	UnassignedPlayers int        `json:"unassignedPlayers"`
	NearMisses        int        `json:"nearMisses"`
}

// Store provides read/write access to generated runs.
type Store interface {
	// Save stores a run, evicting the oldest one when full.
	Save(ctx context.Context, run Run) error

	// Get returns the decoded run. Returns ErrNotFound if the id is unknown.
	Get(ctx context.Context, id string) (Run, error)

	// Raw returns the stored JSON encoding of the run's result.
	Raw(ctx context.Context, id string) ([]byte, error)

	// List returns up to limit summaries, newest first.
	List(ctx context.Context, limit int) ([]Summary, error)

	// Count returns the number of runs held.
	Count(ctx context.Context) int
}
