// Package skill resolves the single skill value used by all balancing math.
package skill

import (
	"math"

	"github.com/okian/teambalance/internal/domain/model"
)

// Rating bounds.
const (
	MinRating = 0
	MaxRating = 10
)

// Clamp bounds v to [MinRating, MaxRating]. NaN maps to MinRating.
func Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return MinRating
	}
	return math.Max(MinRating, math.Min(MaxRating, v))
}

// Effective returns the override rating when set, else the base rating.
func Effective(p *model.Player) float64 {
	if p.OverrideSkill != nil {
		return Clamp(*p.OverrideSkill)
	}
	return Clamp(p.SkillRating)
}

// Normalize returns a copy of p with ratings clamped. A NaN override is
// treated as "not set"; a finite override keeps its own pointer so callers
// never share state with the input.
func Normalize(p model.Player) model.Player {
	p.SkillRating = Clamp(p.SkillRating)
	if p.OverrideSkill != nil {
		if math.IsNaN(*p.OverrideSkill) {
			p.OverrideSkill = nil
		} else {
			v := Clamp(*p.OverrideSkill)
			p.OverrideSkill = &v
		}
	}
	return p
}
