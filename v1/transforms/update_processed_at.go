package transforms

import (
	"context"
	"strings"
	"time"

	"github.com/Aleph-Alpha/outbox-router/v1/connect"
	"github.com/Aleph-Alpha/outbox-router/v1/transform"
)

const (
	// UpdateProcessedAtName is the struct name of UpdateProcessedAt output.
	UpdateProcessedAtName = "UpdateProcessedAt"

	idHeader = "id"
)

// UpdateProcessedAt builds the row update that marks an outbox entry as
// processed: {Id: <id header>, ProcessedAt: <now, RFC 3339 UTC>}. Records
// without an id header are dropped. Headers are not carried over.
type UpdateProcessedAt struct {
	now func() time.Time
}

var _ transform.Transformation = (*UpdateProcessedAt)(nil)

// NewUpdateProcessedAt returns the transform using now as its clock; nil
// means time.Now.
func NewUpdateProcessedAt(now func() time.Time) *UpdateProcessedAt {
	if now == nil {
		now = time.Now
	}
	return &UpdateProcessedAt{now: now}
}

func (t *UpdateProcessedAt) Configure(map[string]string) error {
	if t.now == nil {
		t.now = time.Now
	}
	return nil
}

func (t *UpdateProcessedAt) Apply(_ context.Context, rec *connect.Record) transform.Result {
	if rec == nil {
		return transform.Pass(rec)
	}

	id, ok := rec.Headers.LastWithName(idHeader)
	if !ok || strings.TrimSpace(id) == "" {
		return transform.Drop()
	}

	value := connect.NewStruct(UpdateProcessedAtName).
		Put("Id", connect.String(id)).
		Put("ProcessedAt", connect.String(t.now().UTC().Format(time.RFC3339Nano)))
	return transform.Emit(rec.NewRecord(rec.Topic, rec.Key, value, nil, nil))
}

func (t *UpdateProcessedAt) Config() transform.ConfigDef { return nil }

func (t *UpdateProcessedAt) Close() error { return nil }
