package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Java.BasePackage != "com.example.model" {
		t.Errorf("java base package default: %q", cfg.Java.BasePackage)
	}
	if cfg.Feign.GroupingStrategy != GroupingByTag {
		t.Errorf("grouping default: %q", cfg.Feign.GroupingStrategy)
	}
	if !cfg.Feign.AddFeignAnnotation {
		t.Error("feign annotation should default on")
	}
	if cfg.Feign.IgnoreOptionalParams {
		t.Error("ignore_optional_params should default off")
	}
}

func TestLoadOverlaysDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
java:
  base_package: com.acme.claims.model
feign:
  grouping_strategy: single-client
  ignore_params_list: [X-Trace-Id]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	cfg, err := Load(path, false)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Java.BasePackage != "com.acme.claims.model" {
		t.Errorf("base package not overridden: %q", cfg.Java.BasePackage)
	}
	if !cfg.Java.EnableJavadoc {
		t.Error("unset keys must keep their defaults")
	}
	if cfg.Feign.GroupingStrategy != GroupingSingleClient {
		t.Errorf("grouping not overridden: %q", cfg.Feign.GroupingStrategy)
	}
	if len(cfg.Feign.IgnoreParamsList) != 1 || cfg.Feign.IgnoreParamsList[0] != "X-Trace-Id" {
		t.Errorf("ignore list: %v", cfg.Feign.IgnoreParamsList)
	}
	if cfg.OpenAPIDefinitionsDir != "openapi_definitions" {
		t.Errorf("definitions dir default lost: %q", cfg.OpenAPIDefinitionsDir)
	}
}

func TestLoadMissingOptional(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), true)
	if err != nil {
		t.Fatalf("optional missing file should not error: %v", err)
	}
	if cfg.Java.JavaFolder != "java" {
		t.Errorf("expected defaults, got %q", cfg.Java.JavaFolder)
	}
}

func TestLoadMissingRequired(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml"), false); err == nil {
		t.Fatal("required missing file must error")
	}
}

func TestLoadRejectsBadGrouping(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("feign:\n  grouping_strategy: per-path\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path, false); err == nil {
		t.Fatal("expected error for invalid grouping strategy")
	}
}
