// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package merge

import (
	"github.com/pdiddy/sowgen/internal/schema"
	"github.com/pdiddy/sowgen/internal/values"
	"github.com/pdiddy/sowgen/pkg/types"
)

// aliases maps a placeholder key to alternative store paths tried, in
// order, when the key itself is absent. Read-only after init.
var aliases = map[string][]string{
	"client_name":          {"client_company_name", "client.name", "company_name"},
	"client_company_name":  {"client_name", "client.name"},
	"supplier_name":        {"supplier_company_name", "supplier.name", "vendor_name"},
	"vendor_name":          {"supplier_name", "supplier_company_name"},
	"sow_number":           {"statement_of_work_number", "sow_no", "sow_id"},
	"start_date":           {"project_duration.start_date", "effective_date"},
	"end_date":             {"project_duration.end_date", "completion_date"},
	"client_contact_email": {"client_email", "contact_email"},
	"supplier_signature":   {schema.AuthorizationKey + ".supplier_signer_name"},
	"client_signature":     {schema.AuthorizationKey + ".client_signer_name"},
}

// authorizationRoots are the objects searched for signature keys that a
// transcript spells at top level.
var authorizationRoots = []string{schema.AuthorizationKey, "authorization"}

// Aliases returns the alternative paths tried for key.
func Aliases(key string) []string {
	return append([]string(nil), aliases[key]...)
}

// Source finds store values for placeholder keys and schema paths.
//
// Lookup order for a key: the key as a path, the schema path that ends in
// the key, the key inside the authorization object, then the alias table.
type Source struct {
	store *values.Store
	index map[string]string
}

// NewSource returns a Source over store. sch may be nil when no schema is
// known, which skips the schema path step.
func NewSource(store *values.Store, sch *types.Schema) *Source {
	src := &Source{store: store}
	if sch != nil {
		src.index = schema.PathIndex(*sch)
	}
	return src
}

// Lookup returns the first non-empty value found for key.
func (s *Source) Lookup(key string) (values.Value, bool) {
	if key == "" || s.store == nil {
		return nil, false
	}
	if v, ok := s.get(key); ok {
		return v, true
	}
	if path, ok := s.index[key]; ok && path != key {
		if v, ok := s.get(path); ok {
			return v, true
		}
	}
	for _, root := range authorizationRoots {
		if v, ok := s.get(root + "." + key); ok {
			return v, true
		}
	}
	for _, alt := range aliases[key] {
		if v, ok := s.get(alt); ok {
			return v, true
		}
	}
	return nil, false
}

// LookupPath resolves a schema path. When the exact path is empty, the
// leaf key goes through Lookup so flat stores still fill grouped fields.
func (s *Source) LookupPath(path string) (values.Value, bool) {
	if v, ok := s.get(path); ok {
		return v, true
	}
	p, err := values.ParsePath(path)
	if err != nil || len(p) < 2 {
		return s.Lookup(path)
	}
	leaf := p[len(p)-1]
	if leaf.IsIndex {
		return nil, false
	}
	if v, ok := s.get(leaf.Name); ok {
		return v, true
	}
	for _, root := range authorizationRoots {
		if v, ok := s.get(root + "." + leaf.Name); ok {
			return v, true
		}
	}
	for _, alt := range aliases[leaf.Name] {
		if v, ok := s.get(alt); ok {
			return v, true
		}
	}
	return nil, false
}

func (s *Source) get(path string) (values.Value, bool) {
	if s.store == nil {
		return nil, false
	}
	v, ok := s.store.Get(path)
	if !ok || values.IsEmpty(v) {
		return nil, false
	}
	return v, true
}
