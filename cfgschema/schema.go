// Package cfgschema implements the typed schema layer over cfgdb: section
// naming modes, per-entry validators and binary converters, delta-change
// callbacks, and the validate/tobin passes.
//
// A Schema tolerates duplicate registrations for the same section type or
// the same (type, entry) key — multiple schema fragments (e.g. one per
// plugin) may all claim the same section, and every fragment's validator
// runs.
package cfgschema

import (
	"fmt"
	"sort"
	"strings"

	"github.com/oonf-go/oonf/strarray"
)

// Mode describes how a section type's instances are named.
type Mode int

// The section naming modes.
const (
	// Unnamed sections have a single, implicit instance (name == "").
	Unnamed Mode = iota
	// UnnamedOptionalStartupTrigger is validated like Unnamed. Its delta
	// handler is invoked on startup synthesis only when the database holds
	// the section; cfgdelta.ApplyStartup treats every other mode the same
	// way, so at startup the two unnamed modes behave alike.
	UnnamedOptionalStartupTrigger
	// Named sections require an explicit, non-empty name.
	Named
	// NamedMandatory is Named, and the schema validation pass fails if no
	// matching named section exists in the database at all.
	NamedMandatory
)

func (m Mode) named() bool {
	return m == Named || m == NamedMandatory
}

// ValidatorFunc checks a single value of an entry. sectionName is the
// owning named section's name (useful for cross-referencing error
// messages); log receives human-readable diagnostics.
type ValidatorFunc func(value, sectionName string, log *strings.Builder) error

// ValHelpFunc renders the help text for an entry's validator into out.
type ValHelpFunc func(out *strings.Builder)

// ConverterFunc converts a value list into a Go value suitable for
// assignment into the bound struct field (see ToBinary).
type ConverterFunc func(values *strarray.Array) (interface{}, error)

// SectionValidator checks whole-section invariants once all entries have
// been validated individually.
type SectionValidator func(sectionName string, named bool, log *strings.Builder) error

// EntryKey identifies a schema entry by its owning section type and its
// own key.
type EntryKey struct {
	Type string
	Key  string
}

// Entry is the typed declaration of one configuration key.
type Entry struct {
	Key      EntryKey
	Default  *strarray.Array // nil => mandatory, no default
	List     bool
	Validate ValidatorFunc
	ValHelp  ValHelpFunc
	ToBinary ConverterFunc
	// Field is the name of the struct field ToBinary's result is assigned
	// to by Schema.ToBinary, via reflection (see tobin.go). It stands in for the
	// original's raw bin_offset into a target struct.
	Field string
}

// Section is the schema declaration for one section type.
type Section struct {
	Type         string
	Mode         Mode
	Validate     SectionValidator
	DeltaHandler *DeltaHandler
	Entries      []*Entry
}

// DeltaHandler is a callback invoked by the delta engine (cfgdelta) once
// per named section whose entries changed between two database
// generations. Handlers are invoked in ascending Priority order.
type DeltaHandler struct {
	Priority uint32
	Callback DeltaCallback
}

// DeltaCallback receives the pre/post state of one named section's schema
// entries. It is defined here, not in cfgdelta, so that cfgschema does not
// need to import cfgdelta (see cfgdelta's doc comment for the
// import-cycle rationale).
type DeltaCallback func(change SectionChange)

// EntryChange carries one entry's before/after values and whether they
// differ.
type EntryChange struct {
	Key     string
	Pre     []string
	Post    []string
	Changed bool
}

// SectionChange carries one named section's delta state for a single
// DeltaCallback invocation.
type SectionChange struct {
	SectionType string
	SectionName string
	// PreExists/PostExists report whether the named section was present
	// in the pre/post database generations, respectively — a section only
	// in `pre` has PostExists == false.
	PreExists  bool
	PostExists bool
	Entries    []EntryChange
	// Changed is true if any Entries[i].Changed is true.
	Changed bool
}

// Schema is a collection of section and entry declarations, indexed to
// tolerate duplicate registrations.
type Schema struct {
	sections map[string][]*Section       // by section type
	entries  map[EntryKey][]*Entry       // by (type, entry)
	defaults map[EntryKey]*strarray.Array // agreed default per key, across duplicates
}

// New returns an empty Schema.
func New() *Schema {
	return &Schema{
		sections: make(map[string][]*Section),
		entries:  make(map[EntryKey][]*Entry),
		defaults: make(map[EntryKey]*strarray.Array),
	}
}

// AddSection registers a section declaration and its entries. Calling it
// more than once for the same section type is legal: all fragments'
// validators run during Validate, and duplicate entries within the
// (type, entry) key agree on a single default: the first non-nil default
// registered wins unless a later registration also supplies a non-nil
// default, in which case the later one overwrites it — on every entry
// sharing that key, not just the one being registered (the original's
// "insert overwrites to enforce agreement" rule).
func (s *Schema) AddSection(section *Section, entries ...*Entry) {
	for _, e := range entries {
		e.Key.Type = section.Type
		section.Entries = append(section.Entries, e)
	}
	s.sections[section.Type] = append(s.sections[section.Type], section)

	for _, e := range entries {
		s.entries[e.Key] = append(s.entries[e.Key], e)
		if e.Default != nil {
			s.defaults[e.Key] = e.Default
		}
		if agreed, ok := s.defaults[e.Key]; ok {
			// Refresh every entry previously registered under this key too,
			// not just the ones in this call, so a later conflicting
			// default wins everywhere it's read from directly (tobin.go,
			// help.go), not only through Schema.Default.
			for _, prior := range s.entries[e.Key] {
				prior.Default = agreed
			}
		}
	}
}

// Sections returns every Section declaration registered for typeName, in
// registration order.
func (s *Schema) Sections(typeName string) []*Section {
	return s.sections[typeName]
}

// Entries returns every Entry declaration registered for (typeName, key),
// in registration order.
func (s *Schema) Entries(typeName, key string) []*Entry {
	return s.entries[EntryKey{Type: typeName, Key: key}]
}

// SectionTypes returns every section type with at least one registered
// Section, in an unspecified but stable order.
func (s *Schema) SectionTypes() []string {
	out := make([]string, 0, len(s.sections))
	for t := range s.sections {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Default implements cfgdb.DefaultLookup: it returns the agreed default
// for (sectionType, entryKey), if any entry registration declared one.
func (s *Schema) Default(sectionType, entryKey string) (*strarray.Array, bool) {
	def, ok := s.defaults[EntryKey{Type: sectionType, Key: entryKey}]
	return def, ok
}

func (k EntryKey) String() string {
	return fmt.Sprintf("%s.%s", k.Type, k.Key)
}
