package cfgschema

import (
	"fmt"
	"io"
	"strings"

	"github.com/oonf-go/oonf/cfgdb"
	"github.com/oonf-go/oonf/metrics"
)

// Validate checks db against s. Every value of every entry runs through
// its registered ValidatorFunc(s), and every Section.Validate registered
// for the type runs once per named section, whether or not that section's
// entries passed.
//
// When ignoreUnknownSections is false, a section type or entry key present
// in db but not registered in s is reported as an error. When cleanup is
// true, unknown section types and entries are removed from db, and so is
// every individual value that fails validation (an entry left with no
// value is removed with it) — this mirrors the original's
// cfg_schema_validate(cleanup) argument.
//
// Diagnostics are written to out, one per line. Validate returns a non-nil
// error if any check failed: an unknown section type or entry (unless
// ignoreUnknownSections is true), a naming-mode mismatch, a mandatory
// entry with neither a value nor a default, a value or section validator
// failure, or a missing NamedMandatory section. cleanup does not change
// the result.
func (s *Schema) Validate(db *cfgdb.Database, cleanup, ignoreUnknownSections bool, out io.Writer) error {
	var failed bool
	logf := func(format string, args ...interface{}) {
		fmt.Fprintf(out, format+"\n", args...)
	}

	for _, typeName := range db.SectionTypeNames() {
		sections := s.sections[typeName]
		if len(sections) == 0 {
			logf("unknown section type %q", typeName)
			if !ignoreUnknownSections {
				failed = true
			}
			if cleanup {
				db.RemoveSectionType(typeName)
			}
			continue
		}
		st := db.FindSectionType(typeName)
		for _, name := range st.SectionNames() {
			ns := st.Section(name)
			if err := s.validateNamedSection(db, sections, ns, cleanup, ignoreUnknownSections, logf); err != nil {
				failed = true
				metrics.ValidationFailuresTotal.WithLabelValues(typeName).Inc()
			}
		}
	}

	for _, section := range all(s.sections) {
		if section.Mode != NamedMandatory {
			continue
		}
		st := db.FindSectionType(section.Type)
		if st == nil || len(st.SectionNames()) == 0 {
			logf("mandatory section type %q has no instances", section.Type)
			failed = true
		}
	}

	if failed {
		return fmt.Errorf("cfgschema: validation failed, see log")
	}
	return nil
}

func (s *Schema) validateNamedSection(db *cfgdb.Database, sections []*Section, ns *cfgdb.NamedSection, cleanup, ignoreUnknown bool, logf func(string, ...interface{})) error {
	var failed bool
	named := ns.Name != ""

	for _, section := range sections {
		switch section.Mode {
		case Named, NamedMandatory:
			if !named {
				logf("section type %q requires a name, instance has none", ns.Type)
				failed = true
			}
		case Unnamed, UnnamedOptionalStartupTrigger:
			if named {
				logf("section type %q must be unnamed, found instance %q", ns.Type, ns.Name)
				failed = true
			}
		}
	}

	present := make(map[string]bool, len(ns.EntryKeys()))
	for _, key := range ns.EntryKeys() {
		present[key] = true
	}
	seenKey := make(map[string]bool)
	for _, section := range sections {
		for _, e := range section.Entries {
			if seenKey[e.Key.Key] || present[e.Key.Key] {
				continue
			}
			seenKey[e.Key.Key] = true
			if e.Default == nil {
				logf("%s.%s: entry %q is mandatory and has no value", ns.Type, ns.Name, e.Key.Key)
				failed = true
			}
		}
	}

	for _, key := range ns.EntryKeys() {
		entries := s.entries[EntryKey{Type: ns.Type, Key: key}]
		if len(entries) == 0 {
			logf("unknown entry %s.%s.%s", ns.Type, ns.Name, key)
			if !ignoreUnknown {
				failed = true
			}
			if cleanup {
				db.RemoveEntry(ns.Type, ns.Name, key)
			}
			continue
		}
		e := ns.Entry(key)
		var bad []string
		e.Value.ForEach(func(v string) bool {
			for _, schemaEntry := range entries {
				if schemaEntry.Validate == nil {
					continue
				}
				if err := schemaEntry.Validate(v, ns.Name, &strings.Builder{}); err != nil {
					logf("%s.%s.%s: %v", ns.Type, ns.Name, key, err)
					bad = append(bad, v)
					failed = true
				}
			}
			return true
		})
		if cleanup {
			for _, v := range bad {
				db.RemoveElement(ns.Type, ns.Name, key, v)
			}
		}
	}

	for _, section := range sections {
		if section.Validate == nil {
			continue
		}
		if err := section.Validate(ns.Name, named, &strings.Builder{}); err != nil {
			logf("%s.%s: %v", ns.Type, ns.Name, err)
			failed = true
		}
	}

	if failed {
		return fmt.Errorf("cfgschema: section %s.%s failed validation", ns.Type, ns.Name)
	}
	return nil
}

func all(m map[string][]*Section) []*Section {
	var out []*Section
	for _, sections := range m {
		out = append(out, sections...)
	}
	return out
}
