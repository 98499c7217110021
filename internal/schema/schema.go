// Package schema holds per-tenant import rules: the allowed plan names
// and vesting templates a tenant may reference. The registry is loaded
// once from a JSON source and is read-only afterwards, so it is safe
// for concurrent validation runs.
package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
)

// ErrUnknownTenant is returned when a tenant key has no registered schema.
var ErrUnknownTenant = errors.New("unknown tenant key")

// Entry is the wire shape of one tenant's configuration.
type Entry struct {
	PlanNames        []string `json:"plan_names"`
	VestingTemplates []string `json:"vesting_templates"`
}

// TenantSchema is one tenant's resolved rule set. Immutable once built.
type TenantSchema struct {
	planNames        map[string]struct{}
	vestingTemplates map[string]struct{}
}

// HasPlan reports whether name is an allowed plan. Matching is
// case-sensitive and exact.
func (s *TenantSchema) HasPlan(name string) bool {
	_, ok := s.planNames[name]
	return ok
}

// HasTemplate reports whether name is an allowed vesting template.
func (s *TenantSchema) HasTemplate(name string) bool {
	_, ok := s.vestingTemplates[name]
	return ok
}

// PlanCount returns the number of allowed plan names.
func (s *TenantSchema) PlanCount() int { return len(s.planNames) }

// TemplateCount returns the number of allowed vesting templates.
func (s *TenantSchema) TemplateCount() int { return len(s.vestingTemplates) }

// Registry maps tenant keys to their schemas.
type Registry struct {
	tenants map[string]*TenantSchema
}

// New builds a registry from tenant entries. Duplicate values within an
// entry collapse; keys are taken verbatim.
func New(entries map[string]Entry) *Registry {
	tenants := make(map[string]*TenantSchema, len(entries))
	for key, e := range entries {
		tenants[key] = &TenantSchema{
			planNames:        toSet(e.PlanNames),
			vestingTemplates: toSet(e.VestingTemplates),
		}
	}
	return &Registry{tenants: tenants}
}

// LoadFile reads a registry from a JSON file keyed by tenant key.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}

	var entries map[string]Entry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parsing schema file: %w", err)
	}

	return New(entries), nil
}

// Resolve looks up the schema for a tenant key. Lookup is exact-match
// as provided by the caller; no normalization or fuzzy matching.
func (r *Registry) Resolve(key string) (*TenantSchema, error) {
	ts, ok := r.tenants[key]
	if !ok {
		return nil, fmt.Errorf("resolve tenant %q: %w", key, ErrUnknownTenant)
	}
	return ts, nil
}

// Tenants returns all registered tenant keys, sorted.
func (r *Registry) Tenants() []string {
	keys := make([]string, 0, len(r.tenants))
	for k := range r.tenants {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
