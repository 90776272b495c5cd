package transforms

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Aleph-Alpha/outbox-router/v1/connect"
	"github.com/Aleph-Alpha/outbox-router/v1/transform"
)

const (
	ConfigHeadersToExtract     = "headers.to.extract"
	ConfigHeadersRenameMapping = "headers.rename.mapping"
	ConfigWrapValue            = "wrap.value"
	ConfigPayloadFieldName     = "payload.field.name"

	// UpdatedRecordName is the struct name of ExtractMultipleHeaders output.
	UpdatedRecordName = "UpdatedRecord"
)

// ExtractMultipleHeaders turns a record into an UpdatedRecord struct with
// one string field per configured header, optionally renamed, followed by
// the original value rendered as JSON. A missing header yields "".
type ExtractMultipleHeaders struct {
	headers      []string
	fields       []string
	payloadField string
}

var _ transform.Transformation = (*ExtractMultipleHeaders)(nil)

var extractMultipleHeadersDef = transform.ConfigDef{
	{Name: ConfigHeadersToExtract, Type: transform.TypeList, Required: true,
		Doc: "Comma-separated list of headers to extract"},
	{Name: ConfigHeadersRenameMapping, Type: transform.TypeString,
		Doc: "Mapping of header names, e.g. 'id:EventId,source:SourceTopic'"},
	{Name: ConfigWrapValue, Type: transform.TypeBool, Default: "false",
		Doc: "Accepted for compatibility; the value is always wrapped"},
	{Name: ConfigPayloadFieldName, Type: transform.TypeString, Default: "Payload",
		Doc: "Name of the field holding the original value"},
}

// Configure also fixes the output field layout: it depends on configuration
// only, never on the headers of a particular record.
func (t *ExtractMultipleHeaders) Configure(props map[string]string) error {
	values, err := extractMultipleHeadersDef.Parse(props)
	if err != nil {
		return err
	}

	rename := parseRenameMapping(values.String(ConfigHeadersRenameMapping))
	t.headers = values.List(ConfigHeadersToExtract)
	t.payloadField = values.String(ConfigPayloadFieldName)

	t.fields = make([]string, 0, len(t.headers))
	seen := make(map[string]bool, len(t.headers)+1)
	for _, h := range t.headers {
		field := h
		if renamed, ok := rename[h]; ok {
			field = renamed
		}
		if seen[field] {
			return fmt.Errorf("%w: field %q is produced twice", transform.ErrInvalidConfig, field)
		}
		seen[field] = true
		t.fields = append(t.fields, field)
	}
	if seen[t.payloadField] {
		return fmt.Errorf("%w: header field %q collides with the payload field", transform.ErrInvalidConfig, t.payloadField)
	}
	return nil
}

func (t *ExtractMultipleHeaders) Apply(_ context.Context, rec *connect.Record) transform.Result {
	if rec == nil || rec.Value == nil {
		return transform.Pass(rec)
	}

	payload, err := json.Marshal(rec.Value.Map())
	if err != nil {
		return transform.Fail(rec, fmt.Errorf("extract headers: cannot render value as JSON: %w", err))
	}

	value := &connect.Struct{Name: UpdatedRecordName, Fields: make([]connect.Field, 0, len(t.fields)+1)}
	for i, h := range t.headers {
		v, _ := rec.Headers.LastWithName(h)
		value.Fields = append(value.Fields, connect.Field{Name: t.fields[i], Value: connect.String(v)})
	}
	value.Fields = append(value.Fields, connect.Field{Name: t.payloadField, Value: connect.String(string(payload))})

	return transform.Emit(rec.NewRecord(rec.Topic, rec.Key, value, nil, rec.Headers.Clone()))
}

func (t *ExtractMultipleHeaders) Config() transform.ConfigDef { return extractMultipleHeadersDef }

func (t *ExtractMultipleHeaders) Close() error { return nil }

// parseRenameMapping reads "a:b,c:d". Entries without exactly one colon are
// ignored.
func parseRenameMapping(s string) map[string]string {
	out := make(map[string]string)
	for _, entry := range strings.Split(s, ",") {
		pair := strings.Split(entry, ":")
		if len(pair) != 2 {
			continue
		}
		from, to := strings.TrimSpace(pair[0]), strings.TrimSpace(pair[1])
		if from != "" && to != "" {
			out[from] = to
		}
	}
	return out
}
