package transforms

import (
	"context"
	"errors"
	"fmt"

	"github.com/Aleph-Alpha/outbox-router/v1/connect"
	"github.com/Aleph-Alpha/outbox-router/v1/transform"
)

// Chain applies transforms in order, feeding each the previous output.
type Chain struct {
	steps []step
}

type step struct {
	alias string
	t     transform.Transformation
}

// NewChain builds a chain from configured transforms, aliased by position.
func NewChain(ts ...transform.Transformation) *Chain {
	c := &Chain{}
	for i, t := range ts {
		c.add(fmt.Sprintf("%d", i), t)
	}
	return c
}

func (c *Chain) add(alias string, t transform.Transformation) {
	c.steps = append(c.steps, step{alias: alias, t: t})
}

// Len returns the number of transforms.
func (c *Chain) Len() int { return len(c.steps) }

// Aliases returns the transform aliases in order.
func (c *Chain) Aliases() []string {
	out := make([]string, len(c.steps))
	for i, s := range c.steps {
		out[i] = s.alias
	}
	return out
}

// Apply runs every transform. The result is Unchanged only if no transform
// changed the record. Dropped and Failed stop the chain; a failure carries
// the original input record and the failing alias as Stage.
func (c *Chain) Apply(ctx context.Context, rec *connect.Record) transform.Result {
	current := rec
	changed := false

	for _, s := range c.steps {
		res := s.t.Apply(ctx, current)
		switch res.Outcome {
		case transform.Transformed:
			current = res.Record
			changed = true
		case transform.Dropped:
			res.Stage = s.alias
			return res
		case transform.Failed:
			return transform.Result{
				Outcome: transform.Failed,
				Record:  rec,
				Err:     fmt.Errorf("transform %s: %w", s.alias, res.Err),
				Stage:   s.alias,
			}
		}
	}

	if !changed {
		return transform.Pass(rec)
	}
	return transform.Emit(current)
}

// Close closes every transform and joins their errors.
func (c *Chain) Close() error {
	var errs []error
	for _, s := range c.steps {
		if err := s.t.Close(); err != nil {
			errs = append(errs, fmt.Errorf("transform %s: %w", s.alias, err))
		}
	}
	return errors.Join(errs...)
}
