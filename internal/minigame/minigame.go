// Package minigame turns a visit's chance event into a prize category and a
// client-side animation.
//
// The category is drawn first with a single uniform index over the offered set.
// Animation parameters are drawn afterwards and are presentation only; they never
// feed back into the category.
package minigame

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Jsun-cre8bara/eatsrun-api/internal/model"
)

// Animation timings in milliseconds, per game kind.
const (
	RouletteDuration = 4000
	LadderDuration   = 3000
	CapsuleDuration  = 2000
	CardDuration     = 1500
	SlotDuration     = 3500
)

// Animation shape constants.
const (
	RouletteMinAngle = 1800.0 // five full turns
	LadderCount      = 4
	CapsuleCount     = 6
	CardCount        = 4
	SlotReels        = 3
	SlotSymbols      = 5
)

var (
	// ErrNoCategories is returned when there is nothing to draw from.
	ErrNoCategories = errors.New("no categories available")

	// ErrUnknownGameType is returned for a game kind the client cannot animate.
	ErrUnknownGameType = errors.New("unknown game type")
)

// Animation is a tagged variant: Type selects which of the remaining fields is set.
type Animation struct {
	Type     model.GameType `json:"type"`
	Duration int            `json:"duration"`

	FinalAngle    *float64 `json:"final_angle,omitempty"`
	SelectedIndex *int     `json:"selected_index,omitempty"`
	Slots         []int    `json:"slots,omitempty"`
}

// Result is the outcome of resolving a game.
type Result struct {
	Category  model.Category `json:"result_category"`
	Animation Animation      `json:"animation"`
}

// PickCategory selects one category uniformly at random with a single draw.
// Duplicates in categories are ignored and the input order does not matter.
func PickCategory(r Rand, categories []model.Category) (model.Category, error) {
	set := Distinct(categories)
	if len(set) == 0 {
		return "", ErrNoCategories
	}
	return set[r.IntN(len(set))], nil
}

// Distinct returns the sorted set of categories.
func Distinct(categories []model.Category) []model.Category {
	set := slices.Clone(categories)
	slices.Sort(set)
	return slices.Compact(set)
}

// NewAnimation draws presentation parameters for the given game kind.
func NewAnimation(r Rand, kind model.GameType) (Animation, error) {
	a := Animation{Type: kind}
	switch kind {
	case model.GameTypeRoulette:
		angle := RouletteMinAngle + r.Float64()*360
		a.FinalAngle = &angle
		a.Duration = RouletteDuration
	case model.GameTypeLadder:
		a.SelectedIndex = intPtr(r.IntN(LadderCount))
		a.Duration = LadderDuration
	case model.GameTypeCapsule:
		a.SelectedIndex = intPtr(r.IntN(CapsuleCount))
		a.Duration = CapsuleDuration
	case model.GameTypeCard:
		a.SelectedIndex = intPtr(r.IntN(CardCount))
		a.Duration = CardDuration
	case model.GameTypeSlot:
		a.Slots = make([]int, SlotReels)
		for i := range a.Slots {
			a.Slots[i] = r.IntN(SlotSymbols)
		}
		a.Duration = SlotDuration
	default:
		return Animation{}, fmt.Errorf("%w: %q", ErrUnknownGameType, kind)
	}
	return a, nil
}

// Play draws a category and then an animation for it.
func Play(r Rand, kind model.GameType, categories []model.Category) (*Result, error) {
	if !slices.Contains(model.GameTypes, kind) {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGameType, kind)
	}
	category, err := PickCategory(r, categories)
	if err != nil {
		return nil, err
	}
	anim, err := NewAnimation(r, kind)
	if err != nil {
		return nil, err
	}
	return &Result{Category: category, Animation: anim}, nil
}

// RandomGameType suggests a game kind for a fresh visit.
func RandomGameType(r Rand) model.GameType {
	return model.GameTypes[r.IntN(len(model.GameTypes))]
}

func intPtr(i int) *int {
	return &i
}
