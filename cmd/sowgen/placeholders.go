// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sowgen/internal/placeholder"
)

var placeholdersCmd = &cobra.Command{
	Use:   "placeholders <template>",
	Short: "List the placeholders of a template",
	Long: `Placeholders prints every distinct [Label] or <Label> token of a
template in first-seen order, with its normalized key and inferred type.`,
	Args: cobra.ExactArgs(1),
	RunE: runPlaceholders,
}

func runPlaceholders(cmd *cobra.Command, args []string) error {
	tpl, err := loadTemplate(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	tokens := placeholder.Extract(tpl.Transcript)

	output, _ := cmd.Flags().GetString("output")
	if done, err := writeStructured(os.Stdout, output, tokens); done {
		return err
	}

	if len(tokens) == 0 {
		fmt.Println("No placeholders found.")
		return nil
	}
	rows := make([][]string, len(tokens))
	for i, t := range tokens {
		rows[i] = []string{strconv.Itoa(i + 1), t.RawLabel, t.Key, string(t.Type)}
	}
	fmt.Println(renderTable([]string{"#", "Label", "Key", "Type"}, rows, []columnAlignment{alignRight}))
	return nil
}

func init() {
	placeholdersCmd.Flags().String("output", "table", "output format: table, yaml, or json")

	rootCmd.AddCommand(placeholdersCmd)
}
