package engagement

import (
	"math/rand"

	"snapwallet/internal/models"
)

// Params tunes the organic-growth curve. Defaults approximate the product
// target of 5-10 likes per photo per day, compressed into a fast demo tick.
// These are tunables, not physical constraints.
type Params struct {
	ViewsMin      int
	ViewsMax      int
	LikeChance    float64
	LikesMin      int
	LikesMax      int
	ShareChance   float64
	CommentChance float64
}

func DefaultParams() Params {
	return Params{
		ViewsMin:      5,
		ViewsMax:      19,
		LikeChance:    0.7,
		LikesMin:      1,
		LikesMax:      2,
		ShareChance:   0.15,
		CommentChance: 0.1,
	}
}

// Grow applies one tick of engagement growth to a single photo. Purely
// additive: counters never decrease, visibility and everything else is left
// untouched, so N ticks commute with each other and with the ledger mutators.
// Deterministic given the random source.
func Grow(p models.Photo, rng *rand.Rand, params Params) models.Photo {
	p.Views += params.ViewsMin + rng.Intn(params.ViewsMax-params.ViewsMin+1)
	if rng.Float64() < params.LikeChance {
		p.Likes += params.LikesMin + rng.Intn(params.LikesMax-params.LikesMin+1)
	}
	if rng.Float64() < params.ShareChance {
		p.Shares++
	}
	if rng.Float64() < params.CommentChance {
		p.Comments++
	}
	return p
}
