// Package cfgdb implements the three-level configuration database
// described by the section-type -> named-section -> entry hierarchy:
// a Database owns SectionTypes, each SectionType owns NamedSections
// (keyed by name, with the empty string meaning "the unnamed section"),
// and each NamedSection owns Entries holding a strarray.Array of values.
//
// Keys are matched case-insensitively but their original case is preserved
// for iteration and serialization. Iteration order is always sorted, so
// two databases built from the same content in different orders compare
// and serialize identically.
package cfgdb

import (
	"fmt"
	"regexp"
	"sort"

	"github.com/oonf-go/oonf/strarray"
)

// keyPattern is the allowed shape for section-type names and entry keys.
var keyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ErrInvalidKey is returned when a section-type name or entry key does not
// match the required identifier pattern.
type ErrInvalidKey struct {
	Key string
}

func (e *ErrInvalidKey) Error() string {
	return fmt.Sprintf("cfgdb: invalid key %q", e.Key)
}

// DefaultLookup is satisfied by a schema that can supply a fallback value
// for an entry the database itself has no value for. cfgschema.Schema
// implements this; cfgdb depends only on the interface to avoid an import
// cycle with cfgschema (which needs the concrete Database type for
// Validate/ToBinary).
type DefaultLookup interface {
	Default(sectionType, entryKey string) (*strarray.Array, bool)
}

// Database is the root of the configuration hierarchy.
type Database struct {
	types  map[string]*SectionType
	schema DefaultLookup
}

// New returns an empty Database.
func New() *Database {
	return &Database{types: make(map[string]*SectionType)}
}

// SetSchema attaches a schema used for default-value lookups. It does not
// validate existing content; call the schema's Validate separately.
func (db *Database) SetSchema(s DefaultLookup) {
	db.schema = s
}

// Schema returns the attached schema, or nil.
func (db *Database) Schema() DefaultLookup {
	return db.schema
}

// SectionType groups every NamedSection sharing a configuration category
// (e.g. "log", "interface").
type SectionType struct {
	Name     string
	sections map[string]*NamedSection
}

// NamedSection is one concrete instance of a SectionType. Name is "" for
// the implicit single instance of an unnamed section type.
type NamedSection struct {
	Name    string
	Type    string
	entries map[string]*Entry
}

// Entry binds a key to one or more string values.
type Entry struct {
	Key   string
	Value *strarray.Array
}

func validateKey(k string) error {
	if !keyPattern.MatchString(k) {
		return &ErrInvalidKey{Key: k}
	}
	return nil
}

// AddSectionType creates the section type if missing and returns it.
func (db *Database) AddSectionType(typeName string) (*SectionType, error) {
	if err := validateKey(typeName); err != nil {
		return nil, err
	}
	if st, ok := db.types[lower(typeName)]; ok {
		return st, nil
	}
	st := &SectionType{Name: typeName, sections: make(map[string]*NamedSection)}
	db.types[lower(typeName)] = st
	return st, nil
}

// AddSection creates the named section (and its type, if missing) and
// returns it. name may be "" for an unnamed section.
func (db *Database) AddSection(typeName, name string) (*NamedSection, error) {
	st, err := db.AddSectionType(typeName)
	if err != nil {
		return nil, err
	}
	if ns, ok := st.sections[lower(name)]; ok {
		return ns, nil
	}
	ns := &NamedSection{Name: name, Type: st.Name, entries: make(map[string]*Entry)}
	st.sections[lower(name)] = ns
	return ns, nil
}

// FindSectionType returns the section type, or nil if absent.
func (db *Database) FindSectionType(typeName string) *SectionType {
	return db.types[lower(typeName)]
}

// FindNamedSection returns the named section, or nil if absent.
func (db *Database) FindNamedSection(typeName, name string) *NamedSection {
	st := db.FindSectionType(typeName)
	if st == nil {
		return nil
	}
	return st.sections[lower(name)]
}

// FindEntry returns the entry, or nil if absent.
func (db *Database) FindEntry(typeName, name, key string) *Entry {
	ns := db.FindNamedSection(typeName, name)
	if ns == nil {
		return nil
	}
	return ns.entries[lower(key)]
}

// SetEntry sets or appends a value for (typeName, name, key), creating the
// section type and named section as needed. When append is true and the
// entry already exists, value is added to the existing list; otherwise the
// entry's value list is replaced.
func (db *Database) SetEntry(typeName, name, key, value string, append_ bool) error {
	if err := validateKey(key); err != nil {
		return err
	}
	ns, err := db.AddSection(typeName, name)
	if err != nil {
		return err
	}
	lk := lower(key)
	if append_ {
		if e, ok := ns.entries[lk]; ok {
			e.Value.Append(value)
			return nil
		}
	}
	ns.entries[lk] = &Entry{Key: key, Value: strarray.New(value)}
	return nil
}

// GetEntryValue returns the entry's value array, falling back to the
// schema's default when the database has no value for the
// entry but a schema is attached and declares one. The second return value
// reports whether any value (db or default) was found.
func (db *Database) GetEntryValue(typeName, name, key string) (*strarray.Array, bool) {
	if e := db.FindEntry(typeName, name, key); e != nil {
		return e.Value, true
	}
	if db.schema != nil {
		if def, ok := db.schema.Default(typeName, key); ok {
			return def, true
		}
	}
	return nil, false
}

// IsMultipartEntry reports whether the entry carries more than one value.
func (db *Database) IsMultipartEntry(typeName, name, key string) bool {
	e := db.FindEntry(typeName, name, key)
	return e != nil && e.Value.Count() > 1
}

// EntryListSize returns the number of values the entry holds, 0 if absent.
func (db *Database) EntryListSize(typeName, name, key string) int {
	e := db.FindEntry(typeName, name, key)
	if e == nil {
		return 0
	}
	return e.Value.Count()
}

// RemoveEntry deletes the entry. It is a no-op if absent.
func (db *Database) RemoveEntry(typeName, name, key string) {
	ns := db.FindNamedSection(typeName, name)
	if ns == nil {
		return
	}
	delete(ns.entries, lower(key))
}

// RemoveElement removes a single value from an entry's list, deleting the
// entry entirely once its last value is removed.
func (db *Database) RemoveElement(typeName, name, key, value string) error {
	ns := db.FindNamedSection(typeName, name)
	if ns == nil {
		return fmt.Errorf("cfgdb: no such section %s[%s]", typeName, name)
	}
	e, ok := ns.entries[lower(key)]
	if !ok {
		return fmt.Errorf("cfgdb: no such entry %s[%s].%s", typeName, name, key)
	}
	if err := e.Value.Remove(value, true); err != nil {
		return err
	}
	if e.Value.Count() == 0 {
		delete(ns.entries, lower(key))
	}
	return nil
}

// RemoveNamedSection deletes a named section and all its entries.
func (db *Database) RemoveNamedSection(typeName, name string) {
	st := db.FindSectionType(typeName)
	if st == nil {
		return
	}
	delete(st.sections, lower(name))
}

// RemoveSectionType deletes a section type and everything beneath it.
func (db *Database) RemoveSectionType(typeName string) {
	delete(db.types, lower(typeName))
}

// SectionTypeNames returns every section-type name in sorted order.
func (db *Database) SectionTypeNames() []string {
	names := make([]string, 0, len(db.types))
	for _, st := range db.types {
		names = append(names, st.Name)
	}
	sort.Strings(names)
	return names
}

// SectionNames returns every named-section name within the type, sorted,
// with "" (the unnamed section) sorting last (NULL-as-greater-than-any-
// string, the original's ordering).
func (st *SectionType) SectionNames() []string {
	names := make([]string, 0, len(st.sections))
	for _, ns := range st.sections {
		names = append(names, ns.Name)
	}
	sort.Slice(names, func(i, j int) bool {
		if names[i] == "" {
			return false
		}
		if names[j] == "" {
			return true
		}
		return names[i] < names[j]
	})
	return names
}

// Section returns the named section (exact name, already resolved by the
// caller via SectionNames), or nil.
func (st *SectionType) Section(name string) *NamedSection {
	return st.sections[lower(name)]
}

// EntryKeys returns every entry key in the named section, sorted.
func (ns *NamedSection) EntryKeys() []string {
	keys := make([]string, 0, len(ns.entries))
	for _, e := range ns.entries {
		keys = append(keys, e.Key)
	}
	sort.Strings(keys)
	return keys
}

// Entry returns the entry for key, or nil.
func (ns *NamedSection) Entry(key string) *Entry {
	return ns.entries[lower(key)]
}

func lower(s string) string {
	out := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		out[i] = c
	}
	return string(out)
}
