package cfgio

import (
	"io"

	"github.com/gocarina/gocsv"

	"github.com/oonf-go/oonf/cfgdb"
)

// CSVFormat is an optional tabular representation, one row per value,
// useful for bulk-editing configuration in a spreadsheet. It is not part
// of the mandatory format set, the way the original's own csv plugin
// wasn't part of its core config subsystem either; register it
// explicitly with Registry.Register(&CSVFormat{}) when wanted.
type CSVFormat struct{}

// Name implements Format.
func (CSVFormat) Name() string { return "csv" }

type csvRow struct {
	Type  string `csv:"type"`
	Name  string `csv:"name"`
	Key   string `csv:"key"`
	Value string `csv:"value"`
}

// Load implements Format.
func (CSVFormat) Load(r io.Reader) (*cfgdb.Database, error) {
	var rows []*csvRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, err
	}
	db := cfgdb.New()
	for _, row := range rows {
		if err := db.SetEntry(row.Type, row.Name, row.Key, row.Value, true); err != nil {
			return nil, err
		}
	}
	return db, nil
}

// Save implements Format.
func (CSVFormat) Save(w io.Writer, db *cfgdb.Database) error {
	var rows []*csvRow
	for _, typeName := range db.SectionTypeNames() {
		st := db.FindSectionType(typeName)
		for _, name := range st.SectionNames() {
			ns := st.Section(name)
			for _, key := range ns.EntryKeys() {
				e := ns.Entry(key)
				e.Value.ForEach(func(v string) bool {
					rows = append(rows, &csvRow{Type: typeName, Name: name, Key: key, Value: v})
					return true
				})
			}
		}
	}
	return gocsv.Marshal(rows, w)
}
