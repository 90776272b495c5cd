package transform

import (
	"context"

	"github.com/Aleph-Alpha/outbox-router/v1/connect"
)

// Transformation is a single record transform. Configure is called once
// before the first Apply; Apply may then be called from many goroutines.
type Transformation interface {
	// Configure applies options. Unknown keys are ignored.
	Configure(props map[string]string) error

	// Apply transforms one record. rec is never mutated.
	Apply(ctx context.Context, rec *connect.Record) Result

	// Config describes the options Configure accepts.
	Config() ConfigDef

	// Close releases resources held since Configure.
	Close() error
}

// Outcome tells the caller what Apply did with a record.
type Outcome uint8

const (
	// Unchanged means the input record passes through as is.
	Unchanged Outcome = iota
	// Transformed means Result.Record replaces the input.
	Transformed
	// Dropped means the record is filtered out.
	Dropped
	// Failed means processing failed; Result.Err holds the cause.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Transformed:
		return "transformed"
	case Dropped:
		return "dropped"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of Apply.
type Result struct {
	Outcome Outcome

	// Record is the record to continue with. For Unchanged it is the input.
	Record *connect.Record

	Err error

	// Stage names the transform that failed. Set by chains.
	Stage string
}

// Pass returns an Unchanged result for rec.
func Pass(rec *connect.Record) Result { return Result{Outcome: Unchanged, Record: rec} }

// Emit returns a Transformed result carrying rec.
func Emit(rec *connect.Record) Result { return Result{Outcome: Transformed, Record: rec} }

// Drop returns a Dropped result.
func Drop() Result { return Result{Outcome: Dropped} }

// Fail returns a Failed result for rec.
func Fail(rec *connect.Record, err error) Result {
	return Result{Outcome: Failed, Record: rec, Err: err}
}
