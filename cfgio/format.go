// Package cfgio implements the configuration I/O layer: a registry of
// named formats reachable through a handler://location URL grammar, a
// mandatory "compact" line format grounded on the original's
// src/config/cfgparser_compact plugin, and an optional "csv" format built
// on github.com/gocarina/gocsv.
package cfgio

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/oonf-go/oonf/cfgdb"
	"github.com/oonf-go/oonf/metrics"
)

// Format loads and saves a cfgdb.Database in one on-disk representation.
type Format interface {
	Name() string
	Load(r io.Reader) (*cfgdb.Database, error)
	Save(w io.Writer, db *cfgdb.Database) error
}

// Registry holds the set of formats known to a process, keyed by name.
type Registry struct {
	formats map[string]Format
}

// NewRegistry returns a Registry pre-populated with the mandatory compact
// format.
func NewRegistry() *Registry {
	r := &Registry{formats: make(map[string]Format)}
	r.Register(&CompactFormat{})
	return r
}

// Register adds or replaces a format under its own Name().
func (r *Registry) Register(f Format) {
	r.formats[f.Name()] = f
}

// Get returns the format registered under name.
func (r *Registry) Get(name string) (Format, bool) {
	f, ok := r.formats[name]
	return f, ok
}

// Names returns every registered format name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.formats))
	for n := range r.formats {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// SplitURL splits a handler://location configuration URL into its format
// name and location. A bare location with no "://" defaults to the
// "compact" format, the way a plain file path on the command line does in
// the original.
func SplitURL(url string) (format, location string) {
	if idx := strings.Index(url, "://"); idx >= 0 {
		return url[:idx], url[idx+3:]
	}
	return "compact", url
}

// Load resolves url's format and reads a Database from its location.
func (r *Registry) Load(url string) (db *cfgdb.Database, err error) {
	formatName, location := SplitURL(url)
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.ConfigLoadTotal.WithLabelValues(formatName, outcome).Inc()
	}()

	f, ok := r.Get(formatName)
	if !ok {
		return nil, fmt.Errorf("cfgio: unknown format %q", formatName)
	}
	file, openErr := os.Open(location)
	if openErr != nil {
		return nil, fmt.Errorf("cfgio: %w", openErr)
	}
	defer file.Close()
	return f.Load(file)
}

// Save resolves url's format and writes db to its location.
func (r *Registry) Save(url string, db *cfgdb.Database) error {
	formatName, location := SplitURL(url)
	f, ok := r.Get(formatName)
	if !ok {
		return fmt.Errorf("cfgio: unknown format %q", formatName)
	}
	file, err := os.Create(location)
	if err != nil {
		return fmt.Errorf("cfgio: %w", err)
	}
	defer file.Close()
	return f.Save(file, db)
}
