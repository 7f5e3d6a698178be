// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"encoding/json"
	"os"
	"reflect"

	"gopkg.in/yaml.v3"
)

// StructuredOutput is an embeddable struct that adds --output support to
// a command's parameter struct. Embedding it provides the --output flag
// (via struct tag processing in [BindFlags]) and the [Emit] method for
// conditional structured output.
//
// Usage:
//
//	type listParams struct {
//	    cli.StructuredOutput
//	    Status string `json:"status" flag:"status,s" desc:"filter by status"`
//	}
//
//	// In Run:
//	if done, err := params.Emit(entries); done {
//	    return err
//	}
//	// ... text formatting ...
type StructuredOutput struct {
	Format string `json:"-" flag:"output,o" desc:"output format: text, json, or yaml" default:"text"`
}

// Emit writes result to stdout as JSON or YAML when --output requests
// it. Returns (true, nil) on success, (true, err) on write failure or
// unknown format, or (false, nil) when the format is text and the
// caller should proceed with its own formatting.
//
// Nil slices are normalized to empty slices before serialization, so
// callers never need to guard against null JSON output.
func (s *StructuredOutput) Emit(result any) (bool, error) {
	switch s.Format {
	case "", "text":
		return false, nil
	case "json":
		return true, WriteJSON(normalizeNilSlice(result))
	case "yaml":
		return true, WriteYAML(normalizeNilSlice(result))
	default:
		return true, Validation("unknown output format %q (expected text, json, or yaml)", s.Format)
	}
}

// Structured reports whether --output requested a machine-readable
// format. Commands use this to suppress progress messages that would
// corrupt piped output.
func (s *StructuredOutput) Structured() bool {
	return s.Format == "json" || s.Format == "yaml"
}

// WriteJSON marshals value as indented JSON and writes it to stdout.
// Most commands should use [StructuredOutput.Emit] instead, which
// handles the --output flag check and nil-slice normalization.
func WriteJSON(value any) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(value)
}

// WriteYAML marshals value as YAML and writes it to stdout.
func WriteYAML(value any) error {
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(2)
	defer encoder.Close()
	return encoder.Encode(value)
}

// normalizeNilSlice returns an empty slice of the same type if value
// is a nil slice, so that serialization produces [] instead of null.
// Returns value unchanged for all other types.
func normalizeNilSlice(value any) any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Slice && v.IsNil() {
		return reflect.MakeSlice(v.Type(), 0, 0).Interface()
	}
	return value
}
