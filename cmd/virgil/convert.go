package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gubarz/virgil/internal/config"
	"github.com/gubarz/virgil/internal/output"
	"github.com/gubarz/virgil/internal/parser"
	"github.com/gubarz/virgil/internal/walkthrough"
	"github.com/gubarz/virgil/internal/watch"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file|dir> [out]",
	Short: "Compile Markdown walkthroughs to JSON",
	Long: `Compile a Markdown walkthrough, or every .md file under a directory.

By default each source is written next to itself as <name>.walkthrough.json.
When out is given it names the output file, or the output directory when
converting a directory.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().BoolP("watch", "w", false, "Reconvert when the source changes")
}

// converter compiles sources and delivers the results
type converter struct {
	root   string // source file or directory as given
	out    string
	isDir  bool
	mode   output.Mode
	writer *output.Writer
	parser *parser.Parser
	log    *slog.Logger
}

func runConvert(cmd *cobra.Command, args []string) error {
	applyFlags(cmd)
	log := newLogger()

	mode, err := output.ParseMode(config.GetOutput())
	if err != nil {
		return err
	}

	source, err := filepath.Abs(args[0])
	if err != nil {
		return fmt.Errorf("error resolving path: %w", err)
	}
	info, err := os.Stat(source)
	if err != nil {
		return fmt.Errorf("path error: %w", err)
	}

	c := &converter{
		root:   source,
		isDir:  info.IsDir(),
		mode:   mode,
		writer: output.NewWriter(),
		log:    log,
	}
	if len(args) > 1 {
		c.out = args[1]
	}
	dir := source
	if !c.isDir {
		dir = filepath.Dir(source)
	}
	c.parser = parser.NewParser(parserOptions(dir), config.GetConcurrency())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := c.convertAll(ctx); err != nil {
		return err
	}

	if watchFlag, _ := cmd.Flags().GetBool("watch"); !watchFlag {
		return nil
	}

	w, err := watch.New([]string{source}, func(paths []string) {
		for _, path := range paths {
			if err := c.convertFile(path); err != nil {
				log.Error("convert failed", "path", path, "error", err)
			}
		}
	}, config.GetWatchDebounce(), log)
	if err != nil {
		return err
	}
	log.Info("watching for changes", "path", source)
	return w.Run(ctx)
}

func (c *converter) convertAll(ctx context.Context) error {
	if !c.isDir {
		return c.convertFile(c.root)
	}

	results, err := c.parser.ParseDirectory(ctx, c.root)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	if len(results) == 0 {
		return fmt.Errorf("no markdown files found in %s", c.root)
	}
	for i := range results {
		if err := c.deliver(&results[i]); err != nil {
			return err
		}
	}
	return nil
}

func (c *converter) convertFile(path string) error {
	res, err := c.parser.ParseFile(path)
	if err != nil {
		return fmt.Errorf("parse error: %w", err)
	}
	return c.deliver(res)
}

func (c *converter) deliver(res *parser.FileResult) error {
	printWarnings(os.Stderr, res.Path, res.Warnings)

	dest, err := c.writer.Write(res.Walkthrough, c.mode, destination(c.root, c.isDir, c.out, res.Path))
	if err != nil {
		return fmt.Errorf("%s: %w", res.Path, err)
	}
	if dest != "" {
		c.log.Info("wrote walkthrough", "source", res.Path, "dest", dest, "steps", len(res.Walkthrough.Steps))
	}
	return nil
}

// destination picks the output file for a source. Directory conversions
// mirror the source tree under out.
func destination(root string, isDir bool, out, source string) string {
	def := walkthrough.OutputPath(source)
	if out == "" {
		return def
	}
	if isDir {
		rel, err := filepath.Rel(root, def)
		if err != nil {
			return def
		}
		return filepath.Join(out, rel)
	}
	if info, err := os.Stat(out); (err == nil && info.IsDir()) || strings.HasSuffix(out, string(filepath.Separator)) {
		return filepath.Join(out, filepath.Base(def))
	}
	return out
}
