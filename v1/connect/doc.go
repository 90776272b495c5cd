// Package connect is the record model shared by every transform.
//
// A Record carries a Struct value: an ordered list of named, tagged Values.
// Field access is explicit and fallible:
//
//	topic, ok := rec.Value.Text("Topic")
//
// Values are a closed set of primitive kinds (string, int32, int64, float32,
// float64, boolean, bytes) plus Null. Transforms never mutate the record they
// receive; they derive a new one with Record.NewRecord.
package connect
