package measurements

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidListParams = errors.New("invalid list params")

// ListParams selects one client's samples of one metric in [From, Until). Sources
// also return the latest non-null sample before From, which seeds carry-forward
// and serves as the sparse-mode anchor.
type ListParams struct {
	ClientID  string
	MetricKey string
	From      time.Time
	Until     time.Time
}

func (p ListParams) Validate() error {
	if p.ClientID == "" || p.MetricKey == "" {
		return fmt.Errorf("%w: client id and metric key required", ErrInvalidListParams)
	}
	if !p.Until.After(p.From) {
		return fmt.Errorf("%w: until %s not after from %s", ErrInvalidListParams, p.Until, p.From)
	}
	return nil
}
