// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package export

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pdiddy/sowgen/internal/images"
	"github.com/pdiddy/sowgen/internal/merge"
	"github.com/pdiddy/sowgen/internal/values"
	"github.com/pdiddy/sowgen/pkg/types"
)

// BatchResult holds the outcome of a batch export run.
type BatchResult struct {
	Exported int
	Failed   int
}

// Total returns the number of value files processed.
func (r BatchResult) Total() int {
	return r.Exported + r.Failed
}

// HasFailures reports whether any export failed.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// AttachImage decodes raw into the named image slot of store. Undecodable
// input is reported on the progress writer and dropped.
func (e *Exporter) AttachImage(store *values.Store, name string, raw []byte) bool {
	slot, ok, err := images.Decode(name, raw)
	if !ok {
		fmt.Fprintf(e.w, "dropped: %s image (%v)\n", name, err)
		return false
	}
	store.SetImage(slot)
	return true
}

// LoadImages fills the logo and signature slots from data-URL values
// stored under the slot names, unless a slot is already set.
func (e *Exporter) LoadImages(store *values.Store) {
	for _, name := range []string{types.SlotLogo, types.SlotSignature} {
		if _, ok := store.Image(name); ok {
			continue
		}
		v, ok := store.Get(name)
		if !ok {
			continue
		}
		s := merge.Stringify(v)
		if !strings.HasPrefix(strings.ToLower(s), "data:") {
			continue
		}
		e.AttachImage(store, name, []byte(s))
	}
}

// UseImages sets images that ExportFile places in every slot the values
// file leaves empty.
func (e *Exporter) UseImages(slots ...types.ImageSlot) {
	e.images = slots
}

func (e *Exporter) applyImages(store *values.Store) {
	e.LoadImages(store)
	for _, slot := range e.images {
		if _, ok := store.Image(slot.Name); !ok {
			store.SetImage(slot)
		}
	}
}

// maxNameSuffix bounds the "_N" suffixes WriteDocument tries.
const maxNameSuffix = 999

// WriteDocument writes doc into dir and returns its path. The file is
// written under a temporary name and then linked into place, so a failed
// write never leaves a partial document behind. An existing file is never
// replaced: when doc.Filename is taken, "_2", "_3", ... is added before
// the extension.
func WriteDocument(doc types.GeneratedDocument, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".sowgen-*")
	if err != nil {
		return "", fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(doc.Data); err != nil {
		tmp.Close()
		return "", fmt.Errorf("writing %s: %w", doc.Filename, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("closing %s: %w", doc.Filename, err)
	}

	ext := filepath.Ext(doc.Filename)
	stem := strings.TrimSuffix(doc.Filename, ext)
	for n := 1; n <= maxNameSuffix; n++ {
		name := doc.Filename
		if n > 1 {
			name = fmt.Sprintf("%s_%d%s", stem, n, ext)
		}
		path := filepath.Join(dir, name)
		err := os.Link(tmp.Name(), path)
		if err == nil {
			return path, nil
		}
		if !errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("placing %s: %w", name, err)
		}
	}
	return "", fmt.Errorf("placing %s: %d files with this name already exist", doc.Filename, maxNameSuffix)
}

// ExportFile loads one values file, generates the document and writes it
// to outDir. It prints one status line to the progress writer. The
// returned document's Filename is the name actually written.
func (e *Exporter) ExportFile(tpl Template, valuesPath, outDir string, date time.Time) (types.GeneratedDocument, string, error) {
	base := filepath.Base(valuesPath)
	store, err := values.Load(valuesPath)
	if err != nil {
		fmt.Fprintf(e.w, "failed:  %s (%v)\n", base, err)
		return types.GeneratedDocument{}, "", err
	}
	e.applyImages(store)

	doc, err := e.Export(tpl, store, date)
	if err != nil {
		fmt.Fprintf(e.w, "failed:  %s (%v)\n", base, err)
		return types.GeneratedDocument{}, "", err
	}
	path, err := WriteDocument(doc, outDir)
	if err != nil {
		fmt.Fprintf(e.w, "failed:  %s (%v)\n", base, err)
		return types.GeneratedDocument{}, "", err
	}
	if name := filepath.Base(path); name != doc.Filename {
		fmt.Fprintf(e.w, "exported: %s -> %s (%s already exists)\n", base, name, doc.Filename)
		doc.Filename = name
		return doc, path, nil
	}
	fmt.Fprintf(e.w, "exported: %s -> %s\n", base, doc.Filename)
	return doc, path, nil
}

// ExportBatch exports tpl once per values file, printing per-file status
// and a summary to the progress writer. Documents are returned in input
// order for the files that succeeded.
func (e *Exporter) ExportBatch(tpl Template, valuesPaths []string, outDir string, date time.Time) (BatchResult, []types.GeneratedDocument) {
	var (
		result BatchResult
		docs   []types.GeneratedDocument
	)
	for _, p := range valuesPaths {
		doc, _, err := e.ExportFile(tpl, p, outDir, date)
		if err != nil {
			result.Failed++
			continue
		}
		result.Exported++
		docs = append(docs, doc)
	}
	fmt.Fprintf(e.w, "\nBatch summary: %d exported, %d failed (total: %d)\n",
		result.Exported, result.Failed, result.Total())
	return result, docs
}
