// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package images turns caller-supplied image bytes into embeddable slots.
//
// PNG and JPEG pass through unchanged. GIF, BMP, TIFF and WebP are decoded
// and re-encoded as PNG, since OOXML readers only reliably render the
// first two. Anything that cannot be decoded is dropped: a missing logo
// must never fail an export.
package images

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"strings"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/pdiddy/sowgen/pkg/types"
)

// MaxOtherWidthPx caps the display width of slots with no default box.
const MaxOtherWidthPx = 480

// Box returns the default display box for a slot name.
func Box(name string) (w, h int) {
	switch name {
	case types.SlotLogo:
		return types.LogoWidthPx, types.LogoHeightPx
	case types.SlotSignature:
		return types.SignatureWidthPx, types.SignatureHeightPx
	default:
		return 0, 0
	}
}

// Decode converts raw into a slot. raw may be image bytes or a
// "data:<mime>;base64,<payload>" URL. ok is false, with the reason in err,
// when the input cannot be used.
func Decode(name string, raw []byte) (slot types.ImageSlot, ok bool, err error) {
	data, err := payload(raw)
	if err != nil {
		return types.ImageSlot{}, false, err
	}
	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return types.ImageSlot{}, false, fmt.Errorf("decoding %s image: %w", name, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return types.ImageSlot{}, false, fmt.Errorf("decoding %s image: empty %dx%d bitmap", name, cfg.Width, cfg.Height)
	}

	slot = types.ImageSlot{Name: name}
	switch format {
	case "png":
		slot.Data, slot.Ext, slot.MIME = data, "png", "image/png"
	case "jpeg":
		slot.Data, slot.Ext, slot.MIME = data, "jpeg", "image/jpeg"
	default:
		img, _, err := image.Decode(bytes.NewReader(data))
		if err != nil {
			return types.ImageSlot{}, false, fmt.Errorf("decoding %s %s image: %w", name, format, err)
		}
		var buf bytes.Buffer
		if err := png.Encode(&buf, img); err != nil {
			return types.ImageSlot{}, false, fmt.Errorf("re-encoding %s image: %w", name, err)
		}
		slot.Data, slot.Ext, slot.MIME = buf.Bytes(), "png", "image/png"
	}

	bw, bh := Box(name)
	if bw == 0 {
		bw = min(cfg.Width, MaxOtherWidthPx)
		bh = cfg.Height * bw / cfg.Width
	}
	slot.WidthPx, slot.HeightPx = Fit(cfg.Width, cfg.Height, bw, bh)
	return slot, true, nil
}

// Fit scales w x h to the largest size inside maxW x maxH that keeps the
// aspect ratio. Results are at least 1 pixel.
func Fit(w, h, maxW, maxH int) (int, int) {
	if w <= 0 || h <= 0 || maxW <= 0 || maxH <= 0 {
		return max(maxW, 1), max(maxH, 1)
	}
	// Compare w/h against maxW/maxH without floating point.
	if w*maxH > h*maxW {
		return maxW, max(h*maxW/w, 1)
	}
	return max(w*maxH/h, 1), maxH
}

func payload(raw []byte) ([]byte, error) {
	if len(raw) == 0 {
		return nil, fmt.Errorf("empty image")
	}
	s := string(raw[:min(len(raw), 5)])
	if !strings.EqualFold(s, "data:") {
		return raw, nil
	}
	meta, body, found := strings.Cut(string(raw), ",")
	if !found {
		return nil, fmt.Errorf("data URL without payload")
	}
	if !strings.HasSuffix(strings.ToLower(meta), ";base64") {
		return nil, fmt.Errorf("data URL is not base64 encoded")
	}
	body = strings.TrimSpace(body)
	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		data, err = base64.RawStdEncoding.DecodeString(strings.TrimRight(body, "="))
		if err != nil {
			return nil, fmt.Errorf("decoding data URL: %w", err)
		}
	}
	return data, nil
}
