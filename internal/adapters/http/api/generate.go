package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	service "github.com/okian/teambalance/internal/app"
	"github.com/okian/teambalance/internal/domain/model"
)

// maxBodyBytes bounds POST /teams/generate bodies.
const maxBodyBytes = 8 << 20

// GenerateDependencies defines the interface for team generation.
type GenerateDependencies interface {
	Generate(ctx context.Context, req service.GenerateRequest) (service.Run, error)
}

// playerRequest mirrors the OpenAPI Player schema.
type playerRequest struct {
	ID               string   `json:"id" validate:"required,max=128"`
	Name             string   `json:"name" validate:"required,max=128"`
	Gender           string   `json:"gender" validate:"max=16"`
	SkillRating      float64  `json:"skillRating"`
	OverrideSkill    *float64 `json:"overrideSkill"`
	TeammateRequests []string `json:"teammateRequests" validate:"max=16,dive,max=128"`
	AvoidRequests    []string `json:"avoidRequests" validate:"max=64,dive,max=128"`
	IsHandler        bool     `json:"isHandler"`
	GroupID          string   `json:"groupId" validate:"max=128"`
}

type groupRequest struct {
	ID        string   `json:"id" validate:"required,max=128"`
	Label     string   `json:"label" validate:"max=256"`
	PlayerIDs []string `json:"playerIds" validate:"required,min=1,dive,required"`
}

// configRequest is checked by the engine so that bad limits surface as
// configuration errors.
type configRequest struct {
	MaxTeamSize        int  `json:"maxTeamSize"`
	MinFemales         int  `json:"minFemales"`
	MinMales           int  `json:"minMales"`
	TargetTeams        int  `json:"targetTeams"`
	RequireMixedGender bool `json:"requireMixedGender"`
}

// generateRequest mirrors the OpenAPI schema for POST /teams/generate.
type generateRequest struct {
	Players   []playerRequest `json:"players" validate:"dive"`
	Groups    []groupRequest  `json:"groups" validate:"dive"`
	Config    *configRequest  `json:"config"`
	Mode      string          `json:"mode" validate:"omitempty,oneof=balanced randomized manual"`
	Seed      *int64          `json:"seed"`
	TeamNames []string        `json:"teamNames" validate:"max=256,dive,max=128"`
}

func (r generateRequest) toService() service.GenerateRequest {
	out := service.GenerateRequest{
		Players:   make([]model.Player, len(r.Players)),
		Groups:    make([]model.PlayerGroup, len(r.Groups)),
		Mode:      model.Mode(r.Mode),
		Seed:      r.Seed,
		TeamNames: r.TeamNames,
	}
	for i, p := range r.Players {
		out.Players[i] = model.Player{
			ID:               p.ID,
			Name:             p.Name,
			Gender:           model.Gender(p.Gender),
			SkillRating:      p.SkillRating,
			OverrideSkill:    p.OverrideSkill,
			TeammateRequests: p.TeammateRequests,
			AvoidRequests:    p.AvoidRequests,
			IsHandler:        p.IsHandler,
			GroupID:          p.GroupID,
		}
	}
	for i, g := range r.Groups {
		out.Groups[i] = model.PlayerGroup{ID: g.ID, Label: g.Label, PlayerIDs: g.PlayerIDs}
	}
	if c := r.Config; c != nil {
		out.Config = &model.LeagueConfig{
			MaxTeamSize:        c.MaxTeamSize,
			MinFemales:         c.MinFemales,
			MinMales:           c.MinMales,
			TargetTeams:        c.TargetTeams,
			RequireMixedGender: c.RequireMixedGender,
		}
	}
	return out
}

// GenerateHandler handles team generation requests.
type GenerateHandler struct {
	deps     GenerateDependencies
	validate *validator.Validate
}

// NewGenerateHandler creates a new generate handler.
func NewGenerateHandler(deps GenerateDependencies) *GenerateHandler {
	return &GenerateHandler{deps: deps, validate: validator.New()}
}

// HandleGenerate handles POST /teams/generate requests.
func (h *GenerateHandler) HandleGenerate(w http.ResponseWriter, r *http.Request) {
	const op = "api.generate_teams"
	if r.Method != http.MethodPost {
		http.NotFound(w, r)
		return
	}

	var req generateRequest
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "body_too_large", WrapKind(op, ErrTooLarge, err))
			return
		}
		writeError(w, http.StatusBadRequest, "bad_request", WrapKind(op, ErrBadRequest, err))
		return
	}
	if err := h.validate.StructCtx(r.Context(), req); err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", WrapKind(op, ErrBadRequest, err))
		return
	}

	run, err := h.deps.Generate(r.Context(), req.toService())
	if err != nil {
		writeUpstreamError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, run)
}
