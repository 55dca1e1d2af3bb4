package nutrition

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

const (
	caloriesPlaces      = 0
	macronutrientPlaces = 1
)

type Unit string

const (
	UnitGrams       Unit = "g"
	UnitMillilitres Unit = "ml"
	// UnitWholeMeal expresses quantities as a percentage of a whole meal.
	UnitWholeMeal Unit = "meal"
)

func ParseUnit(s string) (Unit, error) {
	switch Unit(s) {
	case "", UnitGrams, UnitMillilitres, UnitWholeMeal:
		return Unit(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
}

// ScalingRequest asks for the nutrition of ConsumedQuantity given the profile of
// ReferenceQuantity. Both quantities share Unit.
type ScalingRequest struct {
	Reference         Profile `json:"reference"`
	ReferenceQuantity float64 `json:"referenceQuantity"`
	ConsumedQuantity  float64 `json:"consumedQuantity"`
	Unit              Unit    `json:"unit,omitempty"`
}

// WholeMealPortion builds a request for percent of a whole meal.
func WholeMealPortion(reference Profile, percent float64) ScalingRequest {
	return ScalingRequest{
		Reference:         reference,
		ReferenceQuantity: 100,
		ConsumedQuantity:  percent,
		Unit:              UnitWholeMeal,
	}
}

func (r ScalingRequest) Validate() error {
	if _, err := ParseUnit(string(r.Unit)); err != nil {
		return err
	}
	if err := checkQuantity("reference quantity", r.ReferenceQuantity); err != nil {
		return err
	}
	if err := checkQuantity("consumed quantity", r.ConsumedQuantity); err != nil {
		return err
	}
	return r.Reference.Validate()
}

func checkQuantity(name string, q float64) error {
	if math.IsNaN(q) || math.IsInf(q, 0) {
		return fmt.Errorf("%w: %s is not a finite number", ErrInvalidQuantity, name)
	}
	if q < 0 {
		return fmt.Errorf("%w: %s %v is negative", ErrInvalidQuantity, name, q)
	}
	return nil
}

type ScaleResult struct {
	Profile    Profile `json:"profile"`
	Multiplier float64 `json:"multiplier"`
	// InvalidReference is set when the reference quantity was zero and the
	// reference profile was returned unscaled.
	InvalidReference bool `json:"invalidReference"`
}

// Scale multiplies the reference profile by consumed/reference quantity.
// Calories round to whole numbers and the other fields to one decimal, each on its own.
// A zero reference quantity falls back to a multiplier of 1 and flags the result.
func Scale(req ScalingRequest) (ScaleResult, error) {
	if err := req.Validate(); err != nil {
		return ScaleResult{}, err
	}

	if req.ReferenceQuantity == 0 {
		return ScaleResult{
			Profile:          req.Reference,
			Multiplier:       1,
			InvalidReference: true,
		}, nil
	}

	multiplier := decimal.NewFromFloat(req.ConsumedQuantity).
		Div(decimal.NewFromFloat(req.ReferenceQuantity))

	return ScaleResult{
		Profile:    scaleBy(req.Reference, multiplier),
		Multiplier: multiplier.InexactFloat64(),
	}, nil
}

// ScaleBy applies a multiplier directly, with the same rounding policy as Scale.
func ScaleBy(p Profile, multiplier float64) (Profile, error) {
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	if err := checkQuantity("multiplier", multiplier); err != nil {
		return Profile{}, err
	}
	return scaleBy(p, decimal.NewFromFloat(multiplier)), nil
}

func scaleBy(p Profile, multiplier decimal.Decimal) Profile {
	// no rounding drift at 1
	if multiplier.Equal(decimal.NewFromInt(1)) {
		return p
	}

	d := toDecimal(p)
	return decimalProfile{
		calories: d.calories.Mul(multiplier).Round(caloriesPlaces),
		protein:  d.protein.Mul(multiplier).Round(macronutrientPlaces),
		fat:      d.fat.Mul(multiplier).Round(macronutrientPlaces),
		carbs:    d.carbs.Mul(multiplier).Round(macronutrientPlaces),
		fibre:    d.fibre.Mul(multiplier).Round(macronutrientPlaces),
	}.profile()
}
