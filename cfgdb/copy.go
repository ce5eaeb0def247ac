package cfgdb

// CopyEntry appends src's entry values onto dst's entry of the same key,
// creating dst's section/type/entry as needed. It does not clear dst
// first — the copy family always appends onto existing content.
func CopyEntry(dst, src *Database, typeName, name, key string) error {
	e := src.FindEntry(typeName, name, key)
	if e == nil {
		return nil
	}
	var err error
	e.Value.ForEach(func(v string) bool {
		err = dst.SetEntry(typeName, name, key, v, true)
		return err == nil
	})
	return err
}

// CopyNamedSection appends every entry of src's named section onto dst's.
func CopyNamedSection(dst, src *Database, typeName, name string) error {
	ns := src.FindNamedSection(typeName, name)
	if ns == nil {
		return nil
	}
	for _, key := range ns.EntryKeys() {
		if err := CopyEntry(dst, src, typeName, name, key); err != nil {
			return err
		}
	}
	return nil
}

// CopySectionType appends every named section of src's section type onto
// dst's.
func CopySectionType(dst, src *Database, typeName string) error {
	st := src.FindSectionType(typeName)
	if st == nil {
		return nil
	}
	for _, name := range st.SectionNames() {
		if err := CopyNamedSection(dst, src, typeName, name); err != nil {
			return err
		}
	}
	return nil
}

// Copy appends every section type of src onto dst.
func Copy(dst, src *Database) error {
	for _, typeName := range src.SectionTypeNames() {
		if err := CopySectionType(dst, src, typeName); err != nil {
			return err
		}
	}
	return nil
}

// Duplicate returns a new Database with the same schema reference and a
// copy of every entry in db.
func Duplicate(db *Database) (*Database, error) {
	dup := New()
	dup.schema = db.schema
	if err := Copy(dup, db); err != nil {
		return nil, err
	}
	return dup, nil
}
