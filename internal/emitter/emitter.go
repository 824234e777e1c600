// Package emitter writes rendered output trees to disk. Renderers produce
// flat file lists; the emitter plans them deterministically and performs
// the writes, or only the plan in dry-run mode.
package emitter

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File is one rendered output file, addressed relative to the output root.
type File struct {
	RelPath string
	Content []byte
}

// Options controls emission.
type Options struct {
	OutDir string // required; target directory
	Force  bool   // write into a non-empty directory
	DryRun bool   // don't write, only plan
}

// PlannedFile describes a file the emitter intends to write.
type PlannedFile struct {
	RelPath string
	Size    int
}

// Result returns the deterministic plan and how many files were written.
type Result struct {
	Planned []PlannedFile
	Written int
}

// Emit plans files in sorted relative-path order and writes them unless
// DryRun is set. A later file for the same path silently replaces an
// earlier one; callers that care emit into disjoint subtrees.
func Emit(files []File, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.OutDir) == "" {
		return nil, fmt.Errorf("emitter: OutDir is required")
	}

	byPath := map[string][]byte{}
	for _, f := range files {
		byPath[filepath.ToSlash(f.RelPath)] = f.Content
	}
	rels := make([]string, 0, len(byPath))
	for rel := range byPath {
		rels = append(rels, rel)
	}
	sort.Strings(rels)

	res := &Result{Planned: make([]PlannedFile, 0, len(rels))}
	for _, rel := range rels {
		res.Planned = append(res.Planned, PlannedFile{RelPath: rel, Size: len(byPath[rel])})
	}

	if opts.DryRun {
		return res, nil
	}
	if err := writeFiles(opts.OutDir, byPath, opts.Force); err != nil {
		return nil, err
	}
	res.Written = len(rels)
	return res, nil
}

func writeFiles(outDir string, files map[string][]byte, force bool) error {
	abs, err := filepath.Abs(outDir)
	if err != nil {
		return fmt.Errorf("resolve out dir: %w", err)
	}
	if st, err := os.Stat(abs); err == nil && st.IsDir() && !force {
		entries, rerr := os.ReadDir(abs)
		if rerr == nil && len(entries) > 0 {
			return fmt.Errorf("emitter: output directory %q is not empty (use --force to overwrite)", abs)
		}
	}
	for rel, content := range files {
		p := filepath.Join(abs, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", filepath.Dir(p), err)
		}
		tmp := p + ".tmp"
		if err := os.WriteFile(tmp, content, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", rel, err)
		}
		if err := os.Rename(tmp, p); err != nil {
			os.Remove(tmp)
			return fmt.Errorf("finalize %s: %w", rel, err)
		}
	}
	return nil
}
