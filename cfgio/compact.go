package cfgio

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/oonf-go/oonf/cfgdb"
)

// CompactFormat is the line-oriented configuration format grounded on
// original_source/lib/cfgparser_compact/src/cfgparser_compact.c: a section
// header in brackets, "[type]" or "[type=name]", followed by indented
// "key value" lines until the next header or end of input. The key ends at
// the first whitespace; the value is the rest of the line with surrounding
// whitespace trimmed, so it may contain inner spaces. There is no quoting
// or escaping, matching _cb_compact_serialize's plain `"\t%s %s\n"`: a
// value's leading/trailing whitespace, or a newline inside it, is not
// representable. A key line may repeat to build a list entry, matching
// cfgdb's append semantics.
type CompactFormat struct{}

// Name implements Format.
func (CompactFormat) Name() string { return "compact" }

// Load implements Format.
func (CompactFormat) Load(r io.Reader) (*cfgdb.Database, error) {
	db := cfgdb.New()
	scanner := bufio.NewScanner(r)

	var sectionType, sectionName string
	haveSection := false
	line := 0

	for scanner.Scan() {
		line++
		raw := scanner.Text()
		text := strings.TrimSpace(raw)
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if strings.HasPrefix(text, "[") {
			if !strings.HasSuffix(text, "]") {
				return nil, fmt.Errorf("cfgio: compact line %d: unterminated section header %q", line, raw)
			}
			header := text[1 : len(text)-1]
			if idx := strings.IndexByte(header, '='); idx >= 0 {
				sectionType = header[:idx]
				sectionName = header[idx+1:]
			} else {
				sectionType = header
				sectionName = ""
			}
			haveSection = true
			continue
		}
		if !haveSection {
			return nil, fmt.Errorf("cfgio: compact line %d: key/value before any section header", line)
		}
		key, value := splitKeyValue(text)
		if err := db.SetEntry(sectionType, sectionName, key, value, true); err != nil {
			return nil, fmt.Errorf("cfgio: compact line %d: %w", line, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return db, nil
}

func splitKeyValue(text string) (key, value string) {
	idx := strings.IndexAny(text, " \t")
	if idx < 0 {
		return text, ""
	}
	return text[:idx], strings.TrimSpace(text[idx+1:])
}

// Save implements Format.
func (CompactFormat) Save(w io.Writer, db *cfgdb.Database) error {
	bw := bufio.NewWriter(w)
	for _, typeName := range db.SectionTypeNames() {
		st := db.FindSectionType(typeName)
		for _, name := range st.SectionNames() {
			if name == "" {
				fmt.Fprintf(bw, "[%s]\n", typeName)
			} else {
				fmt.Fprintf(bw, "[%s=%s]\n", typeName, name)
			}
			ns := st.Section(name)
			for _, key := range ns.EntryKeys() {
				e := ns.Entry(key)
				e.Value.ForEach(func(v string) bool {
					fmt.Fprintf(bw, "\t%s %s\n", key, v)
					return true
				})
			}
			fmt.Fprintln(bw)
		}
	}
	return bw.Flush()
}
