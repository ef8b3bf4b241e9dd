// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdiddy/sowgen/internal/export"
	"github.com/pdiddy/sowgen/internal/values"
)

var exportCmd = &cobra.Command{
	Use:   "export <template>",
	Short: "Generate a .docx or PDF document from a template",
	Long: `Export merges a values file into a template and writes the document to
the output directory as SOW_<client>_<title>_<YYYYMMDD>.docx (or .pdf).

The structured layout lists every schema field with its value; the
template layout keeps the transcript text and substitutes placeholders.
Logo and signature images are embedded in .docx output only.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	tpl, err := loadTemplate(ctx, args[0])
	if err != nil {
		return err
	}
	store, err := loadValues(cmd)
	if err != nil {
		return err
	}
	cfg := exportConfig(cmd)
	e, err := export.New(cfg, os.Stderr)
	if err != nil {
		return err
	}
	if err := attachImages(cmd, e, store); err != nil {
		return err
	}
	date, err := exportDate(cmd)
	if err != nil {
		return err
	}

	doc, err := e.Export(tpl, store, date)
	if err != nil {
		return err
	}
	path, err := export.WriteDocument(doc, cfg.OutputDir)
	if err != nil {
		return err
	}
	doc.Filename = filepath.Base(path)
	fmt.Printf("wrote: %s (%s)\n", path, humanize.Bytes(uint64(len(doc.Data))))

	if missing := e.Unresolved(tpl, store); len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "unresolved: %d placeholder(s)\n", len(missing))
	}
	recordExports(ctx, cmd, tpl, doc)
	return nil
}

var batchCmd = &cobra.Command{
	Use:   "batch <template> <values...>",
	Short: "Generate one document per values file",
	Long: `Batch exports the template once for each values file, printing one
status line per file and a summary. Files that fail are reported and
skipped; the command exits non-zero if any failed.`,
	Args: cobra.MinimumNArgs(2),
	RunE: runBatch,
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	tpl, err := loadTemplate(ctx, args[0])
	if err != nil {
		return err
	}
	cfg := exportConfig(cmd)
	e, err := export.New(cfg, os.Stdout)
	if err != nil {
		return err
	}
	shared := values.NewStore()
	if err := attachImages(cmd, e, shared); err != nil {
		return err
	}
	e.UseImages(shared.Images()...)
	date, err := exportDate(cmd)
	if err != nil {
		return err
	}

	result, docs := e.ExportBatch(tpl, args[1:], cfg.OutputDir, date)
	recordExports(ctx, cmd, tpl, docs...)
	if result.HasFailures() {
		return fmt.Errorf("%d values file(s) failed", result.Failed)
	}
	return nil
}

// exportDate returns the --date flag, or today.
func exportDate(cmd *cobra.Command) (time.Time, error) {
	s, _ := cmd.Flags().GetString("date")
	if s == "" {
		return time.Now(), nil
	}
	d, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing --date: %w", err)
	}
	return d, nil
}

func init() {
	for _, c := range []*cobra.Command{exportCmd, batchCmd} {
		addExportFlags(c)
		c.Flags().String("date", "", "document date as YYYY-MM-DD (default: today)")
		rootCmd.AddCommand(c)
	}
}
