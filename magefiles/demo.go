//go:build mage

// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

const demoTemplate = `Statement of Work No. [SOW Number]
This Statement of Work is entered into by [Supplier Name] and [Client Name].

1. Project Duration
Start Date: [Start Date]
End Date: [End Date]

2. Scope of Work
- Discovery workshop
- Implementation
- Handover

3. Charges
Total fee: [Total Amount]
Invoices are sent to <Client Contact Email>.
`

const demoValues = `client_name: Acme, Inc.
supplier_name: Globex Consulting
sow_number: SOW-2026-001
project_duration:
  start_date: 2026-01-05
  end_date: 2026-03-31
total_amount: 12500
client_contact_email: ap@acme.example
`

// Demo writes a sample template and values file, then exports and
// verifies every format and layout.
func Demo() error {
	mg.Deps(Init, Build)

	tpl := filepath.Join("templates", "demo_sow.txt")
	vals := filepath.Join("values", "demo_acme.yaml")
	if err := os.WriteFile(tpl, []byte(demoTemplate), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", tpl, err)
	}
	if err := os.WriteFile(vals, []byte(demoValues), 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", vals, err)
	}

	bin := filepath.Join(binDir, binName)
	if err := sh.RunV(bin, "placeholders", tpl); err != nil {
		return err
	}
	for _, format := range []string{"docx", "pdf"} {
		for _, mode := range []string{"structured", "template"} {
			out := filepath.Join("output", "demo", mode)
			if err := sh.RunV(bin, "export", tpl, "--values", vals, "--format", format, "--mode", mode, "--out", out, "--record=false"); err != nil {
				return err
			}
		}
	}

	files, err := filepath.Glob(filepath.Join("output", "demo", "*", "*"))
	if err != nil {
		return err
	}
	return sh.RunV(bin, append([]string{"verify"}, files...)...)
}
