// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// MergeConfig holds settings for value resolution and formatting.
type MergeConfig struct {
	// Unfilled governs placeholders with no resolved value.
	Unfilled UnfilledPolicy `json:"unfilled" yaml:"unfilled"`

	// Currency is the ISO 4217 code used for currency fields (default USD).
	Currency string `json:"currency" yaml:"currency"`

	// Locale is the BCP 47 tag used for number formatting (default en-US).
	Locale string `json:"locale" yaml:"locale"`

	// DateLayout is the Go time layout for date fields (default "02 Jan 2006").
	DateLayout string `json:"date_layout" yaml:"date_layout"`
}

// ExportMode selects how a document body is produced.
type ExportMode string

const (
	// ModeStructured renders every schema field as a label/value line.
	ModeStructured ExportMode = "structured"
	// ModeTemplate keeps the transcript layout and substitutes placeholders.
	ModeTemplate ExportMode = "template"
)

// ExportConfig holds settings for the export stage.
type ExportConfig struct {
	MergeConfig `yaml:",inline"`

	// Format selects the back end: docx or pdf.
	Format OutputFormat `json:"format" yaml:"format"`

	// Mode selects structured or template rendering.
	Mode ExportMode `json:"mode" yaml:"mode"`

	// OutputDir is where the CLI writes generated documents.
	OutputDir string `json:"output_dir" yaml:"output_dir"`

	// ClientKey is the value path used for the client part of the filename
	// (default "client_name").
	ClientKey string `json:"client_key" yaml:"client_key"`
}

// LibraryConfig holds settings for the template library.
type LibraryConfig struct {
	// Dir contains the library database (sowgen.db).
	Dir string `json:"dir" yaml:"dir"`
}

// Config is the top-level configuration read from sowgen.yaml.
type Config struct {
	Export  ExportConfig  `json:"export" yaml:"export"`
	Library LibraryConfig `json:"library" yaml:"library"`
}
