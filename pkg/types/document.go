// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// OutputFormat selects the serialization back end for an export.
type OutputFormat string

const (
	OutputDOCX OutputFormat = "docx"
	OutputPDF  OutputFormat = "pdf"
)

// Ext returns the file extension (with dot) for the format.
func (f OutputFormat) Ext() string {
	return "." + string(f)
}

// Image slot names recognised by the generators.
const (
	SlotLogo      = "logo"
	SlotSignature = "signature"
)

// Default size hints in pixels for the known image slots.
const (
	LogoWidthPx       = 180
	LogoHeightPx      = 56
	SignatureWidthPx  = 240
	SignatureHeightPx = 80
)

// ImageSlot is a decoded image ready for embedding. Data always holds
// PNG or JPEG bytes; Ext is "png" or "jpeg" accordingly.
type ImageSlot struct {
	Name     string `json:"name" yaml:"name"`
	Data     []byte `json:"-" yaml:"-"`
	Ext      string `json:"ext" yaml:"ext"`
	MIME     string `json:"mime" yaml:"mime"`
	WidthPx  int    `json:"width_px" yaml:"width_px"`
	HeightPx int    `json:"height_px" yaml:"height_px"`
}

// GeneratedDocument is the product of one export request. It is handed to
// the caller and never persisted by the engine.
type GeneratedDocument struct {
	ID       string       `json:"id" yaml:"id"`
	Format   OutputFormat `json:"format" yaml:"format"`
	Filename string       `json:"filename" yaml:"filename"`
	Data     []byte       `json:"-" yaml:"-"`
}

// UnfilledMode selects what replaces a placeholder that has no value.
type UnfilledMode string

const (
	// KeepOriginalToken leaves "[Label]" or "<Label>" in place.
	KeepOriginalToken UnfilledMode = "keep"
	// BlankFill substitutes UnfilledPolicy.Marker.
	BlankFill UnfilledMode = "blank"
)

// DefaultBlankMarker is the conventional fill-in line.
const DefaultBlankMarker = "__________"

// UnfilledPolicy is threaded explicitly through every merge call.
type UnfilledPolicy struct {
	Mode   UnfilledMode `json:"mode" yaml:"mode"`
	Marker string       `json:"marker,omitempty" yaml:"marker,omitempty"`
}

// KeepTokens returns the policy that leaves unresolved tokens untouched.
func KeepTokens() UnfilledPolicy {
	return UnfilledPolicy{Mode: KeepOriginalToken}
}

// BlankWith returns the policy that substitutes marker for unresolved tokens.
func BlankWith(marker string) UnfilledPolicy {
	return UnfilledPolicy{Mode: BlankFill, Marker: marker}
}

// Replacement returns the text that stands in for an unresolved token.
func (p UnfilledPolicy) Replacement(token string) string {
	if p.Mode == BlankFill {
		return p.Marker
	}
	return token
}
