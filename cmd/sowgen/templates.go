// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/pdiddy/sowgen/internal/convert"
	"github.com/pdiddy/sowgen/internal/library"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Manage the template library",
	Long: `Templates manages a local SQLite library of imported templates and a
log of the documents generated from them. Library templates can be passed
by id wherever a template file is accepted.`,
}

// --- add subcommand ---

var templatesAddCmd = &cobra.Command{
	Use:   "add <file...>",
	Short: "Import .txt or .docx templates into the library",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runTemplatesAdd,
}

func runTemplatesAdd(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	tpls, result := convert.LoadBatch(args, os.Stdout)

	store, err := library.NewStore(libraryConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	title, _ := cmd.Flags().GetString("title")
	id, _ := cmd.Flags().GetString("id")
	if len(tpls) == 1 {
		if title != "" {
			tpls[0].Title = title
		}
		if id != "" {
			tpls[0].ID = id
		}
	}
	for _, tpl := range tpls {
		e, err := store.Add(ctx, tpl)
		if err != nil {
			return err
		}
		fmt.Printf("stored: %s (%d fields)\n", e.ID, e.Fields)
	}
	if result.HasFailures() {
		return fmt.Errorf("%d file(s) failed to load", result.Failed)
	}
	return nil
}

// --- list subcommand ---

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List library templates",
	Args:  cobra.NoArgs,
	RunE:  runTemplatesList,
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	store, err := library.NewStore(libraryConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.List(cmd.Context())
	if err != nil {
		return err
	}
	output, _ := cmd.Flags().GetString("output")
	if done, err := writeStructured(os.Stdout, output, entries); done {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No templates in library.")
		return nil
	}

	rows := make([][]string, len(entries))
	for i, e := range entries {
		rows[i] = []string{e.ID, e.Title, strconv.Itoa(e.Fields), humanize.Time(e.CreatedAt)}
	}
	fmt.Println(renderTable([]string{"ID", "Title", "Fields", "Added"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
	return nil
}

// --- show subcommand ---

var templatesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a library template and its export log",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplatesShow,
}

func runTemplatesShow(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	store, err := library.NewStore(libraryConfig())
	if err != nil {
		return err
	}
	defer store.Close()

	e, err := store.Get(ctx, args[0])
	if err != nil {
		return err
	}
	recs, err := store.Exports(ctx, e.ID)
	if err != nil {
		return err
	}

	fmt.Printf("ID:      %s\n", e.ID)
	fmt.Printf("Title:   %s\n", e.Title)
	fmt.Printf("Fields:  %d\n", e.Fields)
	fmt.Printf("Added:   %s (%s)\n", e.CreatedAt.Format("2006-01-02 15:04"), humanize.Time(e.CreatedAt))
	if len(e.Source) > 0 {
		fmt.Printf("Source:  .docx, %s\n", humanize.Bytes(uint64(len(e.Source))))
	}
	if transcript, _ := cmd.Flags().GetBool("transcript"); transcript {
		fmt.Printf("\n%s\n", e.Transcript)
	}
	if len(recs) == 0 {
		return nil
	}

	rows := make([][]string, len(recs))
	for i, r := range recs {
		rows[i] = []string{r.Filename, string(r.Format), humanize.Bytes(uint64(r.Size)), humanize.Time(r.CreatedAt)}
	}
	fmt.Println()
	fmt.Println(renderTable([]string{"Document", "Format", "Size", "Generated"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignRight, alignLeft}))
	return nil
}

// --- rm subcommand ---

var templatesRmCmd = &cobra.Command{
	Use:   "rm <id...>",
	Short: "Remove templates and their export log from the library",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := library.NewStore(libraryConfig())
		if err != nil {
			return err
		}
		defer store.Close()

		for _, id := range args {
			if err := store.Delete(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("removed: %s\n", id)
		}
		return nil
	},
}

func init() {
	templatesAddCmd.Flags().String("title", "", "template title (single file only; default: from file name)")
	templatesAddCmd.Flags().String("id", "", "template id (single file only; default: from file name)")
	templatesListCmd.Flags().String("output", "table", "output format: table, yaml, or json")
	templatesShowCmd.Flags().Bool("transcript", false, "print the template transcript")

	templatesCmd.AddCommand(templatesAddCmd)
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesShowCmd)
	templatesCmd.AddCommand(templatesRmCmd)

	rootCmd.AddCommand(templatesCmd)
}
