package seriescache

import (
	"context"

	"github.com/Maladandanmian/nu-performance-nutrition-sub001/internal/trends"
)

// Nop never holds anything.
type Nop struct{}

func (Nop) Get(context.Context, Key) (*trends.Series, int64, bool, error) { return nil, 0, false, nil }

func (Nop) SetAt(context.Context, Key, int64, trends.Series) error { return nil }

func (Nop) Invalidate(context.Context, string, string) error { return nil }
