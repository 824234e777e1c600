package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
)

const sampleDoc = `
openapi: 3.0.0
info:
  title: Fleet
  version: "1.0"
paths:
  /cars:
    post:
      tags: [cars]
      operationId: createCar
      requestBody:
        content:
          application/json:
            schema: {$ref: '#/components/schemas/Car'}
      responses:
        '201':
          description: created
          content:
            application/json:
              schema: {$ref: '#/components/schemas/Car'}
components:
  schemas:
    Vehicle:
      type: object
      properties:
        vehicleId: {type: string}
    Car:
      allOf:
        - $ref: '#/components/schemas/Vehicle'
        - type: object
          properties:
            engine: {type: string}
`

func TestGenerateConfigFromFlags(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)

	var captured *GenerateConfig
	generateRunner = func(ctx context.Context, cmd *cobra.Command, cfg *GenerateConfig) error {
		captured = cfg
		return nil
	}
	t.Cleanup(func() { generateRunner = runGenerate })

	root.SetArgs([]string{
		"--verbose",
		"--config", "custom.yaml",
		"generate",
		"--input", "spec.yaml",
		"--out", "./build",
		"--dry-run",
		"--force",
		"--skip-feign",
	})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
	if captured == nil {
		t.Fatalf("expected config to be captured")
	}
	if captured.Input != "spec.yaml" {
		t.Errorf("input mismatch: got %q", captured.Input)
	}
	if captured.OutDir != "./build" {
		t.Errorf("out mismatch: got %q", captured.OutDir)
	}
	if captured.ConfigPath != "custom.yaml" {
		t.Errorf("config path mismatch: got %q", captured.ConfigPath)
	}
	if !captured.DryRun || !captured.Force || !captured.Verbose {
		t.Errorf("boolean flags not captured: %+v", captured)
	}
	if !captured.SkipFeign || captured.SkipJava || captured.SkipExamples {
		t.Errorf("skip flags mismatch: %+v", captured)
	}
}

func TestGenerateEndToEnd(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "fleet.yaml")
	if err := os.WriteFile(docPath, []byte(sampleDoc), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	outDir := filepath.Join(dir, "out")

	root := NewRootCmd()
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "--input", docPath, "--out", outDir})

	if err := root.Execute(); err != nil {
		t.Fatalf("generate execute: %v", err)
	}

	// Spot-check one file per renderer and tree.
	expect := []string{
		filepath.Join("fleet", "java", "POST_cars", "body", "Car.java"),
		filepath.Join("fleet", "java", "POST_cars", "body", "related", "vehicle", "Vehicle.java"),
		filepath.Join("fleet", "java", "ALL_SCHEMAS", "Vehicle.java"),
		filepath.Join("fleet", "java", "ALL_SCHEMAS", "Vehicle", "Car.java"),
		filepath.Join("fleet", "examples", "POST_cars", "body", "Car.json"),
		filepath.Join("fleet", "feign", "CarsClient.java"),
	}
	for _, rel := range expect {
		if _, err := os.Stat(filepath.Join(outDir, rel)); err != nil {
			t.Errorf("expected output file %s: %v", rel, err)
		}
	}

	data, err := os.ReadFile(filepath.Join(outDir, "fleet", "java", "ALL_SCHEMAS", "Vehicle", "Car.java"))
	if err != nil {
		t.Fatalf("read Car.java: %v", err)
	}
	if !strings.Contains(string(data), "public class Car extends Vehicle {") {
		t.Errorf("unexpected Car.java contents:\n%s", data)
	}
}

func TestGenerateDryRunWritesNothing(t *testing.T) {
	dir := t.TempDir()
	docPath := filepath.Join(dir, "fleet.yaml")
	if err := os.WriteFile(docPath, []byte(sampleDoc), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	outDir := filepath.Join(dir, "out")

	root := NewRootCmd()
	var stdout bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"generate", "--input", docPath, "--out", outDir, "--dry-run"})

	if err := root.Execute(); err != nil {
		t.Fatalf("dry-run execute: %v", err)
	}
	if _, err := os.Stat(outDir); !os.IsNotExist(err) {
		t.Errorf("dry-run must not create the output directory")
	}
	if !strings.Contains(stdout.String(), "planned") {
		t.Errorf("expected plan output, got: %s", stdout.String())
	}
}

func TestGenerateScansDefinitionsDir(t *testing.T) {
	dir := t.TempDir()
	defsDir := filepath.Join(dir, "defs")
	if err := os.MkdirAll(defsDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(defsDir, "fleet.yaml"), []byte(sampleDoc), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("openapi_definitions_dir: "+defsDir+"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	outDir := filepath.Join(dir, "out")

	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--config", cfgPath, "generate", "--out", outDir, "--dry-run"})

	if err := root.Execute(); err != nil {
		t.Fatalf("execute: %v", err)
	}
}

func TestGenerateFailureAggregation(t *testing.T) {
	dir := t.TempDir()
	defsDir := filepath.Join(dir, "defs")
	if err := os.MkdirAll(defsDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	// One good document, one with a dangling reference.
	if err := os.WriteFile(filepath.Join(defsDir, "good.yaml"), []byte(sampleDoc), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	broken := `
openapi: 3.0.0
info: {title: Broken, version: "1"}
paths: {}
components:
  schemas:
    Thing:
      type: object
      properties:
        other: {$ref: '#/components/schemas/Missing'}
`
	if err := os.WriteFile(filepath.Join(defsDir, "broken.yaml"), []byte(broken), 0o644); err != nil {
		t.Fatalf("write doc: %v", err)
	}
	cfgPath := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(cfgPath, []byte("openapi_definitions_dir: "+defsDir+"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	outDir := filepath.Join(dir, "out")

	root := NewRootCmd()
	var stderr bytes.Buffer
	root.SetOut(io.Discard)
	root.SetErr(&stderr)
	root.SetArgs([]string{"--config", cfgPath, "generate", "--out", outDir})

	err := root.Execute()
	if err == nil {
		t.Fatal("expected aggregate error")
	}
	if !strings.Contains(err.Error(), "1 of 2 documents failed") {
		t.Errorf("unexpected aggregate error: %v", err)
	}
	// The good document still produced output.
	if _, serr := os.Stat(filepath.Join(outDir, "good", "java", "ALL_SCHEMAS", "Vehicle.java")); serr != nil {
		t.Errorf("sibling document should still generate: %v", serr)
	}
}

func TestGenerateMissingExplicitConfigIsUsageError(t *testing.T) {
	root := NewRootCmd()
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	root.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "absent.yaml"), "generate", "--input", "x.yaml"})

	err := root.Execute()
	if !errors.Is(err, ErrUsage) {
		t.Fatalf("expected usage error, got %v", err)
	}
}
