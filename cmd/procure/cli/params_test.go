// Copyright 2026 The Procure-to-Pay Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
)

func TestBindFlagsTypes(t *testing.T) {
	var params struct {
		Name     string        `flag:"name,n"   desc:"a string"   default:"anon"`
		Count    int           `flag:"count"    desc:"an int"     default:"3"`
		Ratio    float64       `flag:"ratio"    desc:"a float"    default:"0.5"`
		Enabled  bool          `flag:"enabled"  desc:"a bool"     default:"true"`
		Wait     time.Duration `flag:"wait"     desc:"a duration" default:"5s"`
		Labels   []string      `flag:"labels"   desc:"a slice"    default:"a,b"`
		Untagged string
	}

	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&params, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	if err := flagSet.Parse([]string{"--name", "bob", "--count", "7"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if params.Name != "bob" {
		t.Errorf("Name = %q", params.Name)
	}
	if params.Count != 7 {
		t.Errorf("Count = %d", params.Count)
	}
	if params.Ratio != 0.5 {
		t.Errorf("Ratio default = %v", params.Ratio)
	}
	if !params.Enabled {
		t.Error("Enabled default not applied")
	}
	if params.Wait != 5*time.Second {
		t.Errorf("Wait default = %v", params.Wait)
	}
	if len(params.Labels) != 2 || params.Labels[0] != "a" {
		t.Errorf("Labels default = %v", params.Labels)
	}
	if flagSet.Lookup("untagged") != nil {
		t.Error("untagged field should not be bound")
	}
}

func TestBindFlagsShorthand(t *testing.T) {
	var params struct {
		Status string `flag:"status,s" desc:"status filter"`
	}
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&params, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse([]string{"-s", "approved"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if params.Status != "approved" {
		t.Errorf("Status = %q", params.Status)
	}
}

func TestBindFlagsEmbedded(t *testing.T) {
	type inner struct {
		Verbose bool `flag:"verbose,v" desc:"verbose output"`
	}
	var params struct {
		inner
		Name string `flag:"name" desc:"name"`
	}

	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&params, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse([]string{"--verbose", "--name", "x"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !params.Verbose {
		t.Error("embedded field not bound")
	}
}

func TestBindFlagsFlagBinder(t *testing.T) {
	var params struct {
		Connection
	}
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&params, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse([]string{"--server", "https://example.com", "--no-cache"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if params.Server != "https://example.com" {
		t.Errorf("Server = %q", params.Server)
	}
	if !params.NoCache {
		t.Error("NoCache not set")
	}
}

func TestBindFlagsRejectsNonPointer(t *testing.T) {
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(struct{}{}, flagSet); err == nil {
		t.Error("expected error for non-pointer params")
	}
}

func TestBindFlagsRejectsUnsupportedType(t *testing.T) {
	var params struct {
		Raw map[string]string `flag:"raw" desc:"unsupported"`
	}
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&params, flagSet); err == nil {
		t.Error("expected error for unsupported field type")
	}
}
