// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sowgen/internal/export"
	"github.com/pdiddy/sowgen/pkg/types"
)

var fillCmd = &cobra.Command{
	Use:   "fill <template>",
	Short: "Print a template with its placeholders substituted",
	Long: `Fill substitutes captured values into the template transcript and
prints the result. Placeholders without a value stay as they are, or are
replaced with a blank marker when --unfilled=blank. Unresolved keys are
listed on stderr.`,
	Args: cobra.ExactArgs(1),
	RunE: runFill,
}

func runFill(cmd *cobra.Command, args []string) error {
	tpl, err := loadTemplate(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	store, err := loadValues(cmd)
	if err != nil {
		return err
	}
	e, err := export.New(types.ExportConfig{MergeConfig: mergeConfig(cmd)}, os.Stderr)
	if err != nil {
		return err
	}

	fmt.Print(e.Fill(tpl, store))
	if missing := e.Unresolved(tpl, store); len(missing) > 0 {
		fmt.Fprintf(os.Stderr, "unresolved: %s\n", strings.Join(missing, ", "))
	}
	return nil
}

func init() {
	addMergeFlags(fillCmd)

	rootCmd.AddCommand(fillCmd)
}
