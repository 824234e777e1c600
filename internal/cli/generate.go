package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/openapi2java/openapi2java/internal/config"
	"github.com/openapi2java/openapi2java/internal/emitter"
	"github.com/openapi2java/openapi2java/internal/model"
	"github.com/openapi2java/openapi2java/internal/oasdoc"
	"github.com/openapi2java/openapi2java/internal/render/examplegen"
	"github.com/openapi2java/openapi2java/internal/render/feigngen"
	"github.com/openapi2java/openapi2java/internal/render/javagen"
)

// GenerateConfig captures the resolved options for the generate command.
type GenerateConfig struct {
	Input      string
	OutDir     string
	ConfigPath string
	DryRun     bool
	Force      bool
	Verbose    bool

	SkipExamples bool
	SkipJava     bool
	SkipFeign    bool
}

var generateRunner = runGenerate

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate output trees from one or more OpenAPI documents",
		Long:  "Generate Java model classes, JSON examples and Feign client interfaces. With --input a single document is processed; otherwise every *.yaml/*.yml/*.json in the configured definitions directory is.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := resolveGenerateConfig(cmd)
			if err != nil {
				return err
			}
			return generateRunner(cmd.Context(), cmd, cfg)
		},
	}

	cmd.Flags().StringP("input", "i", "", "Path or URL of a single OpenAPI document")
	cmd.Flags().StringP("out", "o", "generated", "Output directory")
	cmd.Flags().Bool("dry-run", false, "Preview planned outputs without writing files")
	cmd.Flags().Bool("force", false, "Write into a non-empty output directory")
	cmd.Flags().Bool("skip-examples", false, "Skip JSON example generation")
	cmd.Flags().Bool("skip-java", false, "Skip Java model class generation")
	cmd.Flags().Bool("skip-feign", false, "Skip Feign client generation")

	return cmd
}

func resolveGenerateConfig(cmd *cobra.Command) (*GenerateConfig, error) {
	cfg := &GenerateConfig{}
	var err error
	if cfg.Input, err = cmd.Flags().GetString("input"); err != nil {
		return nil, err
	}
	if cfg.OutDir, err = cmd.Flags().GetString("out"); err != nil {
		return nil, err
	}
	if cfg.DryRun, err = cmd.Flags().GetBool("dry-run"); err != nil {
		return nil, err
	}
	if cfg.Force, err = cmd.Flags().GetBool("force"); err != nil {
		return nil, err
	}
	if cfg.SkipExamples, err = cmd.Flags().GetBool("skip-examples"); err != nil {
		return nil, err
	}
	if cfg.SkipJava, err = cmd.Flags().GetBool("skip-java"); err != nil {
		return nil, err
	}
	if cfg.SkipFeign, err = cmd.Flags().GetBool("skip-feign"); err != nil {
		return nil, err
	}
	if cfg.ConfigPath, err = cmd.Root().PersistentFlags().GetString("config"); err != nil {
		return nil, err
	}
	if cfg.Verbose, err = cmd.Root().PersistentFlags().GetBool("verbose"); err != nil {
		return nil, err
	}
	return cfg, nil
}

func runGenerate(ctx context.Context, cmd *cobra.Command, cfg *GenerateConfig) error {
	// An explicitly passed config file must exist; the default one is
	// optional.
	configPath := strings.TrimSpace(cfg.ConfigPath)
	optional := configPath == ""
	if optional {
		configPath = "config.yaml"
	}
	fileCfg, err := config.Load(configPath, optional)
	if err != nil {
		return newUsageError(err.Error())
	}

	inputs, err := collectInputs(cfg, fileCfg)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return newUsageError(fmt.Sprintf("generate: no input documents (pass --input or put documents in %q)", fileCfg.OpenAPIDefinitionsDir))
	}

	// Every document owns an independent model, so documents process in
	// parallel with no shared state. Failures are collected, not fatal to
	// siblings.
	type failure struct {
		input string
		err   error
	}
	var mu sync.Mutex
	var failures []failure

	var g errgroup.Group
	for _, input := range inputs {
		input := input
		g.Go(func() error {
			if err := processDocument(ctx, cmd, cfg, fileCfg, input); err != nil {
				mu.Lock()
				failures = append(failures, failure{input: input, err: err})
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(failures) > 0 {
		sort.Slice(failures, func(i, j int) bool { return failures[i].input < failures[j].input })
		for _, f := range failures {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %s: %v\n", f.input, f.err)
		}
		return fmt.Errorf("generate: %d of %d documents failed", len(failures), len(inputs))
	}
	return nil
}

func collectInputs(cfg *GenerateConfig, fileCfg config.Config) ([]string, error) {
	if strings.TrimSpace(cfg.Input) != "" {
		return []string{strings.TrimSpace(cfg.Input)}, nil
	}
	dir := fileCfg.OpenAPIDefinitionsDir
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, newUsageError(fmt.Sprintf("generate: cannot read definitions directory %q: %v", dir, err))
	}
	var inputs []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch strings.ToLower(filepath.Ext(e.Name())) {
		case ".yaml", ".yml", ".json":
			inputs = append(inputs, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(inputs)
	return inputs, nil
}

func processDocument(ctx context.Context, cmd *cobra.Command, cfg *GenerateConfig, fileCfg config.Config, input string) error {
	doc, err := oasdoc.Load(ctx, input)
	if err != nil {
		return err
	}

	m, err := model.Build(doc, model.Options{
		IgnoreOptionalParams: fileCfg.Feign.IgnoreOptionalParams,
		IgnoreParams:         fileCfg.Feign.IgnoreParamsList,
	})
	if err != nil {
		return err
	}

	var files []emitter.File
	if !cfg.SkipExamples {
		exampleFiles, err := examplegen.Files(m, fileCfg.JSON.ExamplesFolder)
		if err != nil {
			return err
		}
		files = append(files, exampleFiles...)
	}
	if !cfg.SkipJava {
		files = append(files, javagen.Files(m, fileCfg.Java.JavaFolder, javagen.Options{
			BasePackage:   fileCfg.Java.BasePackage,
			EnableJavadoc: fileCfg.Java.EnableJavadoc,
		})...)
	}
	if !cfg.SkipFeign {
		files = append(files, feigngen.Files(m, fileCfg.Feign.FeignFolder, feigngen.Options{
			BasePackage:        fileCfg.Feign.BasePackage,
			ModelPackage:       fileCfg.Java.BasePackage,
			InterfaceSuffix:    fileCfg.Feign.InterfaceSuffix,
			GroupingStrategy:   fileCfg.Feign.GroupingStrategy,
			EnableJavadoc:      fileCfg.Feign.EnableJavadoc,
			GenerateConfig:     fileCfg.Feign.GenerateConfig,
			UseResponseEntity:  fileCfg.Feign.UseResponseEntity,
			OneParamPerLine:    fileCfg.Feign.FormatOneParamPerLine,
			AddFeignAnnotation: fileCfg.Feign.AddFeignAnnotation,
		})...)
	}

	outDir := filepath.Join(cfg.OutDir, doc.Name)
	res, err := emitter.Emit(files, emitter.Options{OutDir: outDir, Force: cfg.Force, DryRun: cfg.DryRun})
	if err != nil {
		return err
	}

	if cfg.DryRun {
		printPlan(cmd, doc.Name, res)
	} else {
		fmt.Fprintf(cmd.OutOrStdout(), "%s: wrote %d files to %s\n", doc.Name, res.Written, outDir)
	}
	reportDiagnostics(cmd, cfg, doc.Name, m.Report)
	return nil
}

func printPlan(cmd *cobra.Command, docName string, res *emitter.Result) {
	fmt.Fprintf(cmd.OutOrStdout(), "%s: planned %d files\n", docName, len(res.Planned))
	for _, f := range res.Planned {
		fmt.Fprintf(cmd.OutOrStdout(), "  %s (%d bytes)\n", f.RelPath, f.Size)
	}
}

func reportDiagnostics(cmd *cobra.Command, cfg *GenerateConfig, docName string, report *model.Report) {
	if report.Empty() {
		return
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d diagnostics\n", docName, len(report.Diagnostics))
	if !cfg.Verbose {
		return
	}
	for _, d := range report.Diagnostics {
		fmt.Fprintf(cmd.ErrOrStderr(), "  %s\n", d)
	}
}
