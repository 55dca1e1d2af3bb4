package trends

import (
	"errors"
	"fmt"
)

// ErrValidation is wrapped by every input error of this package.
var ErrValidation = errors.New("validation error")

var (
	ErrUnknownPeriod      = fmt.Errorf("%w: unknown period", ErrValidation)
	ErrUnknownMode        = fmt.Errorf("%w: unknown reconstruction mode", ErrValidation)
	ErrUnknownPolarity    = fmt.Errorf("%w: unknown polarity", ErrValidation)
	ErrMalformedTimestamp = fmt.Errorf("%w: malformed timestamp", ErrValidation)
	ErrMixedMetrics       = fmt.Errorf("%w: measurements of more than one metric", ErrValidation)
	ErrInvalidValue       = fmt.Errorf("%w: invalid measurement value", ErrValidation)
	ErrInvalidRange       = fmt.Errorf("%w: invalid date range", ErrValidation)
)

func IsValidationErr(err error) bool {
	return errors.Is(err, ErrValidation)
}
