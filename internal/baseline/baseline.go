// Package baseline owns the reference statistics every other component
// standardizes against: per-domain (mean, stdev) tables keyed by linguistic
// category, the distinguished global domain, and the reference domain used
// as the zero-point for cross-channel deltas.
//
// The store is the single authority for domain-to-baseline resolution; other
// packages look domains up here and never hardcode the mapping. Tables are
// immutable after load. Hot reload replaces the whole table set through one
// atomic pointer swap, so in-flight computations never observe a
// half-updated table.
package baseline

import (
	"errors"
	"fmt"
	"os"

	"go.uber.org/atomic"
	"gopkg.in/yaml.v3"
)

// GlobalDomain is the distinguished domain every unknown domain falls back to.
const GlobalDomain = "global"

// ErrUnavailable wraps any failure to load reference data. It is fatal at
// startup: the process must not serve until a dataset loads cleanly.
var ErrUnavailable = errors.New("baseline: reference dataset unavailable")

// Stats is the reference (mean, stdev) pair for one category in one domain.
type Stats struct {
	Mean  float64 `yaml:"mean" json:"mean"`
	Stdev float64 `yaml:"stdev" json:"stdev"`
}

// Z standardizes value against the stats. A zero stdev yields z = 0 by
// definition; this guard is what keeps extraction division-free on
// degenerate baselines.
func (s Stats) Z(value float64) float64 {
	if s.Stdev <= 0 {
		return 0
	}
	return (value - s.Mean) / s.Stdev
}

// DomainTable maps category name to reference stats for one domain.
type DomainTable map[string]Stats

// dataset is one immutable, versioned set of baseline tables.
type dataset struct {
	Version         string                 `yaml:"version"`
	ReferenceDomain string                 `yaml:"reference_domain"`
	Domains         map[string]DomainTable `yaml:"domains"`
}

// Store provides read access to the current dataset. Concurrent readers need
// no locking; Reload swaps the dataset pointer atomically.
type Store struct {
	current *atomic.Pointer[dataset]
}

// LoadFile reads a versioned YAML dataset from path.
func LoadFile(path string) (*Store, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", ErrUnavailable, path, err)
	}
	return Load(data)
}

// Load parses a versioned YAML dataset.
func Load(data []byte) (*Store, error) {
	d, err := parseDataset(data)
	if err != nil {
		return nil, err
	}
	return &Store{current: atomic.NewPointer(d)}, nil
}

// Reload parses a new dataset and swaps it in atomically. On parse failure
// the previous dataset stays in place.
func (s *Store) Reload(data []byte) error {
	d, err := parseDataset(data)
	if err != nil {
		return err
	}
	s.current.Store(d)
	return nil
}

func parseDataset(data []byte) (*dataset, error) {
	var d dataset
	if err := yaml.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: parse: %v", ErrUnavailable, err)
	}
	if d.Version == "" {
		return nil, fmt.Errorf("%w: dataset has no version", ErrUnavailable)
	}
	if _, ok := d.Domains[GlobalDomain]; !ok {
		return nil, fmt.Errorf("%w: dataset has no %q domain", ErrUnavailable, GlobalDomain)
	}
	if d.ReferenceDomain == "" {
		return nil, fmt.Errorf("%w: dataset has no reference_domain", ErrUnavailable)
	}
	if _, ok := d.Domains[d.ReferenceDomain]; !ok {
		return nil, fmt.Errorf("%w: reference_domain %q has no table", ErrUnavailable, d.ReferenceDomain)
	}
	for domain, table := range d.Domains {
		if len(table) == 0 {
			return nil, fmt.Errorf("%w: domain %q has no categories", ErrUnavailable, domain)
		}
		for cat, st := range table {
			if st.Stdev < 0 {
				return nil, fmt.Errorf("%w: domain %q category %q has negative stdev",
					ErrUnavailable, domain, cat)
			}
		}
	}
	return &d, nil
}

// Version returns the dataset version string.
func (s *Store) Version() string {
	return s.current.Load().Version
}

// ReferenceDomain returns the domain used as the zero-point for
// cross-channel deltas.
func (s *Store) ReferenceDomain() string {
	return s.current.Load().ReferenceDomain
}

// Domain returns the table for id, or false when the domain is unknown.
func (s *Store) Domain(id string) (DomainTable, bool) {
	t, ok := s.current.Load().Domains[id]
	return t, ok
}

// Resolve returns the table that standardizes measurements for domainID.
// Unknown domains resolve to the global table; fellBack reports that this
// happened so the caller can log the fallback. An empty domainID is the
// implicit general bucket and resolves to global without counting as a
// fallback.
func (s *Store) Resolve(domainID string) (resolved string, table DomainTable, fellBack bool) {
	d := s.current.Load()
	if domainID == "" {
		return GlobalDomain, d.Domains[GlobalDomain], false
	}
	if t, ok := d.Domains[domainID]; ok {
		return domainID, t, false
	}
	return GlobalDomain, d.Domains[GlobalDomain], true
}

// Lookup returns the stats for one category in one domain, falling back to
// the global table per Resolve.
func (s *Store) Lookup(domainID, category string) (Stats, bool) {
	_, table, _ := s.Resolve(domainID)
	st, ok := table[category]
	return st, ok
}

// ComputeDeltas returns, for every category present in both the reference
// and target tables, reference.mean - target.mean. The result is empty when
// the target resolves to the reference domain. Deltas answer "how should the
// generation target shift for this channel", never "how should the author be
// re-measured"; they are recomputed per plan and never persisted, so a
// dataset reload can never leave stale deltas behind.
func (s *Store) ComputeDeltas(targetDomain string) map[string]float64 {
	d := s.current.Load()
	resolved, target, _ := s.Resolve(targetDomain)
	if resolved == d.ReferenceDomain {
		return map[string]float64{}
	}
	ref := d.Domains[d.ReferenceDomain]
	deltas := make(map[string]float64)
	for cat, refStats := range ref {
		tgtStats, ok := target[cat]
		if !ok {
			continue
		}
		deltas[cat] = refStats.Mean - tgtStats.Mean
	}
	return deltas
}

// ComputeDeltaZ converts ComputeDeltas into z units by dividing each delta
// by the reference domain's stdev for that category, so planners can add it
// directly to a baseline z target. Categories with a zero reference stdev
// contribute a zero delta.
func (s *Store) ComputeDeltaZ(targetDomain string) map[string]float64 {
	d := s.current.Load()
	ref := d.Domains[d.ReferenceDomain]
	deltas := s.ComputeDeltas(targetDomain)
	out := make(map[string]float64, len(deltas))
	for cat, delta := range deltas {
		st := ref[cat]
		if st.Stdev <= 0 {
			out[cat] = 0
			continue
		}
		out[cat] = delta / st.Stdev
	}
	return out
}

// Categories returns the category names of the global table. Feature vector
// construction uses this as the canonical axis ordering source.
func (s *Store) Categories() []string {
	d := s.current.Load()
	g := d.Domains[GlobalDomain]
	out := make([]string, 0, len(g))
	for cat := range g {
		out = append(out, cat)
	}
	return out
}
