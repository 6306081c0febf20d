package domain

import (
	"context"
	"errors"
)

// ErrNotRecognized is the failure classification for every provider problem:
// unreachable, timed out, unparseable output, or an explicit not-food answer.
// Callers classify with errors.Is; the wrapped detail is for logs only.
var ErrNotRecognized = errors.New("not_recognized")

// MacroProfile is a per-100g nutrient profile.
type MacroProfile struct {
	Calories float64
	Protein  float64
	Fat      float64
	Carbs    float64
}

// FoodEstimate is the normalized recognition result. Name is always non-empty
// and at least one of Calories or Grams is positive; anything weaker is
// classified as ErrNotRecognized before it leaves the gateway.
type FoodEstimate struct {
	Name       string
	Calories   float64       // kcal for the described portion, when the provider supplies it
	Grams      float64       // estimated portion size, 0 when unknown
	PerHundred *MacroProfile // optional provider-supplied per-100g macros; Calories is zero unless the provider states per-100g energy
}

// Gateway normalizes heterogeneous recognition and composition providers into
// one contract. Raw provider payloads never leak past it.
type Gateway interface {
	// Identify requires at least one of textHint / photo. It delegates to a
	// text-only provider when photo is empty and to a vision-capable provider
	// otherwise.
	Identify(ctx context.Context, textHint string, photo []byte) (*FoodEstimate, error)

	// LookupComposition resolves a food name to a per-100g profile.
	LookupComposition(ctx context.Context, foodName string) (*MacroProfile, error)
}

// TextProvider identifies food from a free-text description.
type TextProvider interface {
	Analyze(ctx context.Context, text string) (string, error)
}

// VisionProvider identifies food from a photo plus an optional description.
type VisionProvider interface {
	Analyze(ctx context.Context, text string, photo []byte) (string, error)
}

// CompositionProvider looks up per-100g macros for a food name.
type CompositionProvider interface {
	Search(ctx context.Context, food string) (*MacroProfile, error)
}
