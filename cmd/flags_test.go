package cmd

import (
	"os"
	"testing"

	"github.com/relloyd/makedw/config"
	"github.com/spf13/cobra"
)

func TestGetCliFlag(t *testing.T) {
	defer func() { twelveFactorMode = false }()
	fnGetConfig := func(key string, out interface{}) error {
		return nil
	}
	flagName := "mock"
	mockEnvVar := flagNameToEnvVar(flagName)
	expected := "envTest"
	d := "myDefault"
	// Test 1 - test default value applied to mock CLI flag.
	got := switches.getCliFlag(flagName, d, fnGetConfig)
	if got.val != d { // if no default was applied...
		t.Fatalf("test 1 failed: expected default value %v to be applied to mock CLI flag", got.val)
	}
	// Test 2 - fetch flag value from environment when it is not set - expect default value to be applied.
	twelveFactorMode = true // enable twelveFactorMode so that env variables are read.
	got = switches.getCliFlag(flagName, d, fnGetConfig)
	if got.val != d {
		t.Fatalf("test 2 failed: expected default value (%v) to be applied to mock CLI flag fetched via environment variable (%v)", got.val, mockEnvVar)
	}
	// Test 3 - fetch flag value from environment after setting it explicitly (requires twelveFactorMode).
	if err := os.Setenv(mockEnvVar, expected); err != nil {
		t.Fatalf("test 3 failed: unable to set environment variable %v", mockEnvVar)
	}
	defer os.Unsetenv(mockEnvVar)
	got = switches.getCliFlag(flagName, d, fnGetConfig)
	if got.val != expected {
		t.Fatalf("test 3 failed: expected value (%v) to be applied to mock CLI flag (%v) fetched from environment variable (%v); got: %v", expected, flagName, mockEnvVar, got.val)
	}
}

func TestGetCliFlagUsesSavedDefault(t *testing.T) {
	twelveFactorMode = false
	fnGetConfig := func(key string, out interface{}) error {
		if key != "scd-type" {
			return config.KeyNotFoundError{}
		}
		*(out.(*string)) = "Type 2"
		return nil
	}
	if got := switches.getCliFlag("scd-type", "", fnGetConfig); got.val != "Type 2" {
		t.Fatalf("expected saved default \"Type 2\"; got %q", got.val)
	}
	if got := switches.getCliFlag("tables", "x", fnGetConfig); got.val != "x" {
		t.Fatalf("expected supplied default \"x\"; got %q", got.val)
	}
}

func TestFlagNameToEnvVar(t *testing.T) {
	if got := flagNameToEnvVar("backdate-to"); got != "MDW_BACKDATE_TO" {
		t.Fatalf("expected MDW_BACKDATE_TO; got %v", got)
	}
}

func TestGenerateFlagsRegistered(t *testing.T) {
	for _, name := range []string{"config", "source", "definitions", "tables", "output", "s3-region", "scd-type",
		"drop-first", "backdate-to", "concurrency", "table-filter", "log-level"} {
		if generateCmd.Flags().Lookup(name) == nil {
			t.Fatalf("generate is missing flag %q", name)
		}
	}
	var found *cobra.Command
	for _, c := range rootCmd.Commands() {
		if c.Name() == "generate" {
			found = c
		}
	}
	if found == nil {
		t.Fatal("generate is not registered with the root command")
	}
}
