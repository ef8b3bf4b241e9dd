// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/sowgen/internal/convert"
	"github.com/pdiddy/sowgen/internal/export"
	"github.com/pdiddy/sowgen/internal/library"
	"github.com/pdiddy/sowgen/internal/values"
	"github.com/pdiddy/sowgen/pkg/types"
)

// addMergeFlags registers the flags shared by every command that
// substitutes values.
func addMergeFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("values", "v", "", "YAML or JSON values file")
	cmd.Flags().String("unfilled", string(types.KeepOriginalToken), "unfilled placeholders: keep or blank")
	cmd.Flags().String("marker", types.DefaultBlankMarker, "replacement text when --unfilled=blank")
	cmd.Flags().String("currency", "USD", "ISO 4217 currency code for currency fields")
	cmd.Flags().String("locale", "en-US", "BCP 47 locale for number formatting")
	cmd.Flags().String("date-layout", "02 Jan 2006", "Go time layout for date fields")
}

// addExportFlags registers the flags of the document-producing commands.
func addExportFlags(cmd *cobra.Command) {
	addMergeFlags(cmd)
	cmd.Flags().StringP("format", "f", string(types.OutputDOCX), "output format: docx or pdf")
	cmd.Flags().StringP("mode", "m", string(types.ModeStructured), "layout: structured or template")
	cmd.Flags().StringP("out", "o", "output", "output directory")
	cmd.Flags().String("client-key", export.DefaultClientKey, "value path used for the client part of the filename")
	cmd.Flags().String("logo", "", "logo image file")
	cmd.Flags().String("signature", "", "signature image file")
	cmd.Flags().Bool("record", true, "log generated documents in the template library")
}

// setting returns the flag value when given on the command line, then the
// config value under key, then the flag default.
func setting(cmd *cobra.Command, flag, key string) string {
	f := cmd.Flags().Lookup(flag)
	if f != nil && f.Changed {
		return f.Value.String()
	}
	if v := viper.GetString(key); v != "" {
		return v
	}
	if f != nil {
		return f.Value.String()
	}
	return ""
}

func mergeConfig(cmd *cobra.Command) types.MergeConfig {
	unfilled := types.UnfilledPolicy{Mode: types.UnfilledMode(setting(cmd, "unfilled", "export.unfilled"))}
	if unfilled.Mode == types.BlankFill {
		unfilled.Marker = setting(cmd, "marker", "export.marker")
	}
	return types.MergeConfig{
		Unfilled:   unfilled,
		Currency:   setting(cmd, "currency", "export.currency"),
		Locale:     setting(cmd, "locale", "export.locale"),
		DateLayout: setting(cmd, "date-layout", "export.date_layout"),
	}
}

func exportConfig(cmd *cobra.Command) types.ExportConfig {
	return types.ExportConfig{
		MergeConfig: mergeConfig(cmd),
		Format:      types.OutputFormat(setting(cmd, "format", "export.format")),
		Mode:        types.ExportMode(setting(cmd, "mode", "export.mode")),
		OutputDir:   setting(cmd, "out", "export.output_dir"),
		ClientKey:   setting(cmd, "client-key", "export.client_key"),
	}
}

func libraryConfig() types.LibraryConfig {
	return types.LibraryConfig{Dir: viper.GetString("library.dir")}
}

// loadTemplate reads a template file, or looks the argument up as a
// library id when no such file exists.
func loadTemplate(ctx context.Context, arg string) (export.Template, error) {
	if _, err := os.Stat(arg); err == nil {
		return convert.Load(arg)
	}
	store, err := library.NewStore(libraryConfig())
	if err != nil {
		return export.Template{}, err
	}
	defer store.Close()

	e, err := store.Get(ctx, arg)
	if errors.Is(err, library.ErrNotFound) {
		return export.Template{}, fmt.Errorf("%s: no such file or library template", arg)
	}
	if err != nil {
		return export.Template{}, err
	}
	return e.Template, nil
}

// loadValues reads the --values file, or returns an empty store when none
// was given.
func loadValues(cmd *cobra.Command) (*values.Store, error) {
	path, _ := cmd.Flags().GetString("values")
	if path == "" {
		return values.NewStore(), nil
	}
	return values.Load(path)
}

// attachImages decodes the --logo and --signature files into store.
func attachImages(cmd *cobra.Command, e *export.Exporter, store *values.Store) error {
	for _, slot := range []string{types.SlotLogo, types.SlotSignature} {
		path, _ := cmd.Flags().GetString(slot)
		if path == "" {
			continue
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s image: %w", slot, err)
		}
		e.AttachImage(store, slot, raw)
	}
	e.LoadImages(store)
	return nil
}

// recordExports logs docs in the library when --record is set and the
// template is known there. Failures are reported, not returned.
func recordExports(ctx context.Context, cmd *cobra.Command, tpl export.Template, docs ...types.GeneratedDocument) {
	if record, _ := cmd.Flags().GetBool("record"); !record {
		return
	}
	store, err := library.NewStore(libraryConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: library unavailable: %v\n", err)
		return
	}
	defer store.Close()

	if _, err := store.Get(ctx, tpl.ID); err != nil {
		return
	}
	for _, doc := range docs {
		if _, err := store.RecordExport(ctx, tpl.ID, doc); err != nil {
			fmt.Fprintf(os.Stderr, "warning: %v\n", err)
		}
	}
}
