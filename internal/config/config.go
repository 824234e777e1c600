// Package config loads generator settings from config.yaml. Missing keys
// keep their defaults: the file is decoded over a defaults-initialized
// struct, which gives deep-merge semantics without a merge pass.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// JSON configures the example renderer output.
type JSON struct {
	ExamplesFolder string `yaml:"examples_folder"`
}

// Java configures the model class renderer.
type Java struct {
	BasePackage   string `yaml:"base_package"`
	JavaFolder    string `yaml:"java_folder"`
	EnableJavadoc bool   `yaml:"enable_javadoc"`
}

// Feign configures the client interface renderer. IgnoreOptionalParams and
// IgnoreParamsList are the only keys consumed before rendering: they filter
// parameters while operation bindings are built.
type Feign struct {
	BasePackage           string   `yaml:"base_package"`
	FeignFolder           string   `yaml:"feign_folder"`
	EnableJavadoc         bool     `yaml:"enable_javadoc"`
	InterfaceSuffix       string   `yaml:"interface_suffix"`
	GenerateConfig        bool     `yaml:"generate_config"`
	GroupingStrategy      string   `yaml:"grouping_strategy"` // single-client | by-tag
	UseResponseEntity     bool     `yaml:"use_response_entity"`
	FormatOneParamPerLine bool     `yaml:"format_one_param_per_line"`
	AddFeignAnnotation    bool     `yaml:"add_feign_annotation"`
	IgnoreOptionalParams  bool     `yaml:"ignore_optional_params"`
	IgnoreParamsList      []string `yaml:"ignore_params_list"`
}

// Config is the full configuration surface.
type Config struct {
	JSON                  JSON   `yaml:"json"`
	Java                  Java   `yaml:"java"`
	Feign                 Feign  `yaml:"feign"`
	OpenAPIDefinitionsDir string `yaml:"openapi_definitions_dir"`
}

const (
	GroupingSingleClient = "single-client"
	GroupingByTag        = "by-tag"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		JSON: JSON{ExamplesFolder: "examples"},
		Java: Java{
			BasePackage:   "com.example.model",
			JavaFolder:    "java",
			EnableJavadoc: true,
		},
		Feign: Feign{
			BasePackage:        "com.example.client",
			FeignFolder:        "feign",
			EnableJavadoc:      true,
			InterfaceSuffix:    "Client",
			GroupingStrategy:   GroupingByTag,
			AddFeignAnnotation: true,
		},
		OpenAPIDefinitionsDir: "openapi_definitions",
	}
}

// Load reads path and overlays it on the defaults. A missing file is not
// an error when optional is set; a present but unreadable or invalid file
// always is.
func Load(path string, optional bool) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if optional && os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Feign.GroupingStrategy {
	case GroupingSingleClient, GroupingByTag:
		return nil
	default:
		return fmt.Errorf("feign.grouping_strategy must be %q or %q, got %q",
			GroupingSingleClient, GroupingByTag, c.Feign.GroupingStrategy)
	}
}

// DefaultYAML is the commented config file written by the init command.
const DefaultYAML = `# openapi2java configuration.
# Every key is optional; omitted keys keep their defaults.

# Directory scanned for *.yaml / *.yml / *.json documents when --input is not given.
openapi_definitions_dir: openapi_definitions

json:
  # Folder (under the per-document output root) for generated JSON examples.
  examples_folder: examples

java:
  base_package: com.example.model
  java_folder: java
  enable_javadoc: true

feign:
  base_package: com.example.client
  feign_folder: feign
  enable_javadoc: true
  interface_suffix: Client
  generate_config: false
  # single-client puts every operation in one interface; by-tag groups by tag.
  grouping_strategy: by-tag
  use_response_entity: false
  format_one_param_per_line: false
  add_feign_annotation: true
  # Drop optional parameters from generated client methods.
  ignore_optional_params: false
  # Drop these parameters by name.
  ignore_params_list: []
`
