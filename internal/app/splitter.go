package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gswsys/panoform/internal/ctxlog"
	"github.com/gswsys/panoform/internal/pantree"
	"github.com/gswsys/panoform/internal/split"
)

// Splitter partitions a management-server export into per-device-group
// XML files ready for individual conversion.
type Splitter struct {
	outW   io.Writer
	logger *slog.Logger
	config *SplitConfig
}

func NewSplitter(outW io.Writer, cfg *SplitConfig) *Splitter {
	return &Splitter{
		outW:   outW,
		logger: newLogger(cfg.LogLevel, cfg.LogFormat, outW),
		config: cfg,
	}
}

func (s *Splitter) Run(ctx context.Context) error {
	ctx = ctxlog.WithLogger(ctx, s.logger)
	log := s.logger

	tree, err := pantree.LoadFile(s.config.InputPath)
	if err != nil {
		return fmt.Errorf("loading %s: %w", s.config.InputPath, err)
	}

	res, err := split.Split(ctx, tree)
	if err != nil {
		return err
	}
	for _, w := range res.Warnings {
		log.Warn(w)
	}

	if err := os.MkdirAll(s.config.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	for _, p := range res.Partitions {
		path := filepath.Join(s.config.OutputDir, p.FileName)
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("creating %s: %w", path, err)
		}
		if err := p.Tree.WriteXML(f); err != nil {
			f.Close()
			return fmt.Errorf("writing %s: %w", path, err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Info("wrote device group", "group", p.Group, "path", path)
	}
	log.Info("split finished", "device_groups", len(res.Partitions), "output", s.config.OutputDir)
	return nil
}
