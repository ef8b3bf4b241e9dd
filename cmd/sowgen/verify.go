// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/sowgen/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <file...>",
	Short: "Check the structure of generated .docx and PDF files",
	Long: `Verify re-reads documents and checks their structure: required package
parts and relationship targets for .docx; xref offsets and pdfcpu
validation for PDF. Each file gets one status line.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		base := filepath.Base(path)
		detail, err := verifyFile(path)
		if err != nil {
			fmt.Printf("failed:  %s (%v)\n", base, err)
			failed++
			continue
		}
		fmt.Printf("ok:      %s%s\n", base, detail)
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed verification", failed)
	}
	return nil
}

func verifyFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if strings.EqualFold(filepath.Ext(path), ".pdf") || bytes.HasPrefix(data, []byte("%PDF-")) {
		pages, err := verify.PDF(data)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf(" (%d page(s))", pages), nil
	}
	return "", verify.DOCX(data)
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}
