package nutrition

import (
	"errors"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidQuantity = errors.New("invalid quantity")
	ErrInvalidProfile  = errors.New("invalid nutrition profile")
	ErrUnknownUnit     = errors.New("unknown unit")
)

// Profile is a nutrition vector for some quantity of food or drink: a component,
// a reference serving, or a total. Calories in kcal, the rest in grams.
type Profile struct {
	Calories float64 `json:"calories"`
	Protein  float64 `json:"protein"`
	Fat      float64 `json:"fat"`
	Carbs    float64 `json:"carbs"`
	Fibre    float64 `json:"fibre"`
}

// Validate reports the first non-finite field, in declaration order.
func (p Profile) Validate() error {
	for _, f := range [...]struct {
		name  string
		value float64
	}{
		{"calories", p.Calories},
		{"protein", p.Protein},
		{"fat", p.Fat},
		{"carbs", p.Carbs},
		{"fibre", p.Fibre},
	} {
		if math.IsNaN(f.value) || math.IsInf(f.value, 0) {
			return fmt.Errorf("%w: %s is not a finite number", ErrInvalidProfile, f.name)
		}
	}
	return nil
}

// decimalProfile is Profile in exact decimal arithmetic.
type decimalProfile struct {
	calories, protein, fat, carbs, fibre decimal.Decimal
}

func toDecimal(p Profile) decimalProfile {
	return decimalProfile{
		calories: decimal.NewFromFloat(p.Calories),
		protein:  decimal.NewFromFloat(p.Protein),
		fat:      decimal.NewFromFloat(p.Fat),
		carbs:    decimal.NewFromFloat(p.Carbs),
		fibre:    decimal.NewFromFloat(p.Fibre),
	}
}

func (d decimalProfile) add(o decimalProfile) decimalProfile {
	return decimalProfile{
		calories: d.calories.Add(o.calories),
		protein:  d.protein.Add(o.protein),
		fat:      d.fat.Add(o.fat),
		carbs:    d.carbs.Add(o.carbs),
		fibre:    d.fibre.Add(o.fibre),
	}
}

func (d decimalProfile) profile() Profile {
	return Profile{
		Calories: d.calories.InexactFloat64(),
		Protein:  d.protein.InexactFloat64(),
		Fat:      d.fat.InexactFloat64(),
		Carbs:    d.carbs.InexactFloat64(),
		Fibre:    d.fibre.InexactFloat64(),
	}
}

// Aggregate sums the components and the optional beverage field by field.
func Aggregate(components []Profile, beverage *Profile) (Profile, error) {
	total := toDecimal(Profile{})
	for i, c := range components {
		if err := c.Validate(); err != nil {
			return Profile{}, fmt.Errorf("component %d: %w", i, err)
		}
		total = total.add(toDecimal(c))
	}

	if beverage != nil {
		if err := beverage.Validate(); err != nil {
			return Profile{}, fmt.Errorf("beverage: %w", err)
		}
		total = total.add(toDecimal(*beverage))
	}

	return total.profile(), nil
}
