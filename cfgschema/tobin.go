package cfgschema

import (
	"fmt"
	"reflect"

	"github.com/oonf-go/oonf/cfgdb"
)

// ToBinary converts every schema entry of (typeName, name) into its bound
// struct field on target, a pointer to a struct. It stands in for the
// original's bin_offset/memcpy-into-a-raw-struct approach: Go code binds
// entries to field names and lets reflection perform the assignment,
// which keeps the conversion type-checked instead of pointer-arithmetic.
func (s *Schema) ToBinary(db *cfgdb.Database, typeName, name string, target interface{}) error {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("cfgschema: ToBinary target must be a pointer to a struct")
	}
	elem := rv.Elem()

	for _, section := range s.sections[typeName] {
		for _, e := range section.Entries {
			if e.Field == "" || e.ToBinary == nil {
				continue
			}
			values, ok := db.GetEntryValue(typeName, name, e.Key.Key)
			if !ok {
				if e.Default == nil {
					return fmt.Errorf("cfgschema: %s.%s.%s has no value and no default", typeName, name, e.Key.Key)
				}
				values = e.Default
			}
			converted, err := e.ToBinary(values)
			if err != nil {
				return fmt.Errorf("cfgschema: %s.%s.%s: %w", typeName, name, e.Key.Key, err)
			}
			field := elem.FieldByName(e.Field)
			if !field.IsValid() {
				return fmt.Errorf("cfgschema: target has no field %q for entry %s", e.Field, e.Key)
			}
			cv := reflect.ValueOf(converted)
			if !cv.Type().AssignableTo(field.Type()) {
				if cv.Type().ConvertibleTo(field.Type()) {
					cv = cv.Convert(field.Type())
				} else {
					return fmt.Errorf("cfgschema: entry %s converts to %s, field %s is %s", e.Key, cv.Type(), e.Field, field.Type())
				}
			}
			field.Set(cv)
		}
	}
	return nil
}
