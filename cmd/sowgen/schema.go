// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sowgen/internal/schema"
	"github.com/pdiddy/sowgen/internal/segment"
)

var schemaCmd = &cobra.Command{
	Use:   "schema <template>",
	Short: "Build the field schema of a template",
	Long: `Schema segments the template into sections, builds the ordered field
schema, and prints every addressable value path. Use --output yaml or
json for the full schema, or --sections to see the segmentation.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchema,
}

func runSchema(cmd *cobra.Command, args []string) error {
	tpl, err := loadTemplate(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")

	if sections, _ := cmd.Flags().GetBool("sections"); sections {
		secs := segment.Segment(tpl.Transcript)
		if done, err := writeStructured(os.Stdout, output, secs); done {
			return err
		}
		rows := make([][]string, len(secs))
		for i, s := range secs {
			ordinal := ""
			if s.HasOrdinal() {
				ordinal = fmt.Sprint(*s.Ordinal)
			}
			rows[i] = []string{ordinal, s.Title, fmt.Sprint(len(s.Lines)), fmt.Sprint(len(s.Fields))}
		}
		fmt.Println(renderTable([]string{"No.", "Section", "Lines", "Fields"}, rows,
			[]columnAlignment{alignRight, alignLeft, alignRight, alignRight}))
		return nil
	}

	sch := tpl.Schema()
	if done, err := writeStructured(os.Stdout, output, sch); done {
		return err
	}

	entries := schema.Flatten(sch)
	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.Path, e.Label, string(e.Kind), string(e.Type)}
	}
	fmt.Printf("%s (%s)\n", sch.Title, sch.TemplateID)
	fmt.Println(renderTable([]string{"Path", "Label", "Kind", "Type"}, rows, nil))
	return nil
}

func init() {
	schemaCmd.Flags().String("output", "table", "output format: table, yaml, or json")
	schemaCmd.Flags().Bool("sections", false, "show the section segmentation instead of the schema")

	rootCmd.AddCommand(schemaCmd)
}
