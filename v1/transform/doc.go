// Package transform defines the contract shared by every record transform
// the pipeline can run: the outbox router and the header utilities alike.
//
// Apply returns a Result instead of an error so callers branch on the
// outcome: Unchanged (pass through), Transformed (replace), Dropped (filter)
// or Failed (dead-letter or stop).
//
// ConfigDef describes the string options a transform accepts and parses
// them into typed Values:
//
//	def := transform.ConfigDef{
//	    {Name: "header.name", Type: transform.TypeString, Required: true},
//	    {Name: "wrap.value", Type: transform.TypeBool, Default: "false"},
//	}
//	values, err := def.Parse(props)
package transform
