package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gswsys/panoform/internal/canon"
	"github.com/gswsys/panoform/internal/ctxlog"
	"github.com/gswsys/panoform/internal/emit"
	"github.com/gswsys/panoform/internal/pantree"
	"github.com/gswsys/panoform/internal/report"
	"github.com/gswsys/panoform/internal/scope"
	"github.com/gswsys/panoform/internal/synth"
)

// Converter runs the full conversion pipeline: load, resolve,
// canonicalize, plan, render, write.
type Converter struct {
	outW   io.Writer
	logger *slog.Logger
	config *Config
}

// NewConverter builds a converter with its own isolated logger.
func NewConverter(outW io.Writer, cfg *Config) *Converter {
	return &Converter{
		outW:   outW,
		logger: newLogger(cfg.LogLevel, cfg.LogFormat, outW),
		config: cfg,
	}
}

// Run executes the pipeline. Generated files are written even when
// some references do not resolve; the joined resolution error is
// returned at the end so the caller can signal partial output.
func (c *Converter) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, c.logger)
	log := c.logger

	tree, err := pantree.LoadFile(c.config.InputPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", c.config.InputPath, err)
	}
	log.Info("configuration loaded", "input", c.config.InputPath)

	chains := scope.BuildChains(tree)
	for _, w := range chains.Warnings {
		log.Warn(w)
	}
	log.Debug("scope chains built", "device_groups", len(chains.ByGroup))

	set, resolveErr := canon.Canonicalize(ctx, chains)
	if resolveErr != nil {
		log.Warn("some references did not resolve; affected objects will be skipped")
	}
	log.Info("objects canonicalized", "objects", len(set.Objects))

	plan, err := synth.Build(ctx, set)
	if err != nil {
		return err
	}

	files := emit.Render(ctx, plan)
	files = append(files, reportFiles(plan)...)
	files = append(files, emit.File{Name: "README.md", Body: []byte(report.Readme)})

	if err := c.writeFiles(files); err != nil {
		return err
	}
	log.Info("conversion finished",
		"resources", len(plan.Resources),
		"files", len(files),
		"output", c.config.OutputDir)

	if resolveErr != nil {
		return fmt.Errorf("conversion completed with unresolved references:\n%w", resolveErr)
	}
	return nil
}

func reportFiles(plan *synth.Plan) []emit.File {
	var out []emit.File
	if content, ok := report.Interfaces(plan); ok {
		out = append(out, emit.File{Name: "INTERFACE_MIGRATION_REPORT.txt", Body: []byte(content)})
	}
	if content, ok := report.VPN(plan); ok {
		out = append(out, emit.File{Name: "VPN_MIGRATION_REPORT.txt", Body: []byte(content)})
	}
	return out
}

func (c *Converter) writeFiles(files []emit.File) error {
	if err := os.MkdirAll(c.config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for _, f := range files {
		path := filepath.Join(c.config.OutputDir, f.Name)
		if err := os.WriteFile(path, f.Body, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
		c.logger.Debug("wrote file", "path", path, "bytes", len(f.Body))
	}
	return nil
}
