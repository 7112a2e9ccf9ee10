package resilience

import "context"

// Op is one attempt at producing a value.
type Op func(ctx context.Context) (any, error)
