package transforms

import (
	"context"

	"github.com/Aleph-Alpha/outbox-router/v1/connect"
	"github.com/Aleph-Alpha/outbox-router/v1/transform"
)

const (
	ConfigHeaderName  = "header.name"
	ConfigTargetField = "target.field"
)

// ExtractHeader replaces the record value with a single string field holding
// the value of one header. Records without the header pass through.
type ExtractHeader struct {
	headerName  string
	targetField string
}

var _ transform.Transformation = (*ExtractHeader)(nil)

var extractHeaderDef = transform.ConfigDef{
	{Name: ConfigHeaderName, Type: transform.TypeString, Required: true, Doc: "Kafka header name to extract"},
	{Name: ConfigTargetField, Type: transform.TypeString, Required: true, Doc: "Target field name in the record"},
}

func (t *ExtractHeader) Configure(props map[string]string) error {
	values, err := extractHeaderDef.Parse(props)
	if err != nil {
		return err
	}
	t.headerName = values.String(ConfigHeaderName)
	t.targetField = values.String(ConfigTargetField)
	return nil
}

func (t *ExtractHeader) Apply(_ context.Context, rec *connect.Record) transform.Result {
	if rec == nil {
		return transform.Pass(rec)
	}
	v, ok := rec.Headers.LastWithName(t.headerName)
	if !ok {
		return transform.Pass(rec)
	}

	var name string
	if rec.Value != nil {
		name = rec.Value.Name
	}
	value := connect.NewStruct(name).Put(t.targetField, connect.String(v))
	return transform.Emit(rec.NewRecord(rec.Topic, rec.Key, value, nil, rec.Headers.Clone()))
}

func (t *ExtractHeader) Config() transform.ConfigDef { return extractHeaderDef }

func (t *ExtractHeader) Close() error { return nil }
