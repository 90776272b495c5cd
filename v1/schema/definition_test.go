package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orderSchema = `{
	"type": "record",
	"name": "OrderCreated",
	"namespace": "com.shop.orders",
	"fields": [
		{"name": "amount", "type": "double"},
		{"name": "currency", "type": "string"},
		{"name": "note", "type": ["null", "string"], "default": null},
		{"name": "quantity", "type": {"type": "int"}},
		{"name": "createdAt", "type": {"type": "long", "logicalType": "timestamp-millis"}},
		{"name": "lines", "type": {"type": "array", "items": "string"}},
		{"name": "choice", "type": ["int", "string"]},
		{"name": "address", "type": {"type": "record", "name": "Address", "fields": [{"name": "city", "type": "string"}]}},
		{"name": "shipTo", "type": ["null", "Address"]}
	]
}`

func TestParseMapsFieldTypes(t *testing.T) {
	def, err := Parse(orderSchema)
	require.NoError(t, err)

	assert.Equal(t, "OrderCreated", def.Name)
	assert.Equal(t, "com.shop.orders", def.Namespace)
	assert.Equal(t, "com.shop.orders.OrderCreated", def.FullName())
	require.Len(t, def.Fields, 9)

	want := map[string]string{
		"amount":    "double",
		"currency":  "string",
		"note":      "nullable<string>",
		"quantity":  "int",
		"createdAt": "long.timestamp-millis",
		"lines":     "unsupported(array)",
		"choice":    "unsupported(union)",
		"address":   "unsupported(record)",
		"shipTo":    "nullable<unsupported(Address)>",
	}
	for _, f := range def.Fields {
		assert.Equal(t, want[f.Name], f.Type.String(), f.Name)
	}

	note, ok := def.Field("note")
	require.True(t, ok)
	assert.True(t, note.HasDefault)
	amount, _ := def.Field("amount")
	assert.False(t, amount.HasDefault)
}

func TestParseRejectsInvalidSchemas(t *testing.T) {
	cases := map[string]string{
		"not json":           `{"type": "record"`,
		"unknown type":       `{"type": "record", "name": "X", "fields": [{"name": "a", "type": "strang"}]}`,
		"top level not rec":  `"string"`,
		"top level is array": `{"type": "array", "items": "string"}`,
	}
	for name, text := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(text)
			require.Error(t, err)
			assert.True(t, IsParseError(err))
		})
	}
}

func TestParseOnlyNullUnionIsUnsupported(t *testing.T) {
	def, err := Parse(`{"type": "record", "name": "X", "fields": [{"name": "a", "type": ["null"]}]}`)
	require.NoError(t, err)
	assert.Equal(t, KindUnsupported, def.Fields[0].Type.Kind)
}

func TestParseSingleMemberUnionIsItsMember(t *testing.T) {
	def, err := Parse(`{"type": "record", "name": "X", "fields": [
		{"name": "a", "type": ["string"]},
		{"name": "b", "type": [{"type": "array", "items": "int"}]}
	]}`)
	require.NoError(t, err)
	assert.Equal(t, "string", def.Fields[0].Type.String())
	assert.Equal(t, "unsupported(array)", def.Fields[1].Type.String())
}

func TestParseRegisteredKeepsCoordinates(t *testing.T) {
	def, err := ParseRegistered("orders-value", 12, 3, `{"type": "record", "name": "X", "fields": []}`)
	require.NoError(t, err)
	assert.Equal(t, "orders-value", def.Subject)
	assert.Equal(t, 12, def.ID)
	assert.Equal(t, 3, def.Version)
	assert.Equal(t, "X", def.FullName())
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	def, err := Parse(`{
		"type": "record", "name": "Payment",
		"fields": [
			{"name": "amount", "type": "double"},
			{"name": "currency", "type": "string"},
			{"name": "note", "type": ["null", "string"]},
			{"name": "count", "type": "int", "default": 1},
			{"name": "blob", "type": "bytes"}
		]
	}`)
	require.NoError(t, err)

	encoded, err := def.Encode(map[string]interface{}{
		"amount":   10.5,
		"currency": "USD",
		"note":     "gift",
		"count":    nil,
		"blob":     []byte{0x01, 0x02},
	})
	require.NoError(t, err)

	decoded, err := def.Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, 10.5, decoded["amount"])
	assert.Equal(t, "USD", decoded["currency"])
	assert.Equal(t, map[string]interface{}{"string": "gift"}, decoded["note"])
	assert.Equal(t, int32(1), decoded["count"])
	assert.Equal(t, []byte{0x01, 0x02}, decoded["blob"])
}

func TestEncodeMissingRequiredValueFails(t *testing.T) {
	def, err := Parse(`{"type": "record", "name": "P", "fields": [{"name": "currency", "type": "string"}]}`)
	require.NoError(t, err)

	_, err = def.Encode(map[string]interface{}{"currency": nil})
	require.ErrorIs(t, err, ErrEncode)
}
