package cfgschema

import (
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"github.com/oonf-go/oonf/netaddr"
	"github.com/oonf-go/oonf/strarray"
)

// StringEntry builds an *Entry whose validator accepts any value up to
// maxLen bytes.
func StringEntry(maxLen int) *Entry {
	return &Entry{
		Validate: func(value, _ string, _ *strings.Builder) error {
			if len(value) > maxLen {
				return fmt.Errorf("value %q longer than %d characters", value, maxLen)
			}
			return nil
		},
		ValHelp: func(out *strings.Builder) {
			fmt.Fprintf(out, "String with maximum length %d", maxLen)
		},
		ToBinary: func(values *strarray.Array) (interface{}, error) {
			s, _ := values.First()
			return s, nil
		},
	}
}

// PrintableEntry is StringEntry plus a requirement that every byte be a
// printable, non-whitespace-control character.
func PrintableEntry(maxLen int) *Entry {
	e := StringEntry(maxLen)
	baseValidate := e.Validate
	e.Validate = func(value, sectionName string, log *strings.Builder) error {
		if err := baseValidate(value, sectionName, log); err != nil {
			return err
		}
		for _, r := range value {
			if !unicode.IsPrint(r) {
				return fmt.Errorf("value %q contains non-printable character %q", value, r)
			}
		}
		return nil
	}
	e.ValHelp = func(out *strings.Builder) {
		fmt.Fprintf(out, "Printable string with maximum length %d", maxLen)
	}
	return e
}

// ChoiceEntry accepts one of options, matched case-insensitively, and
// converts the value to its index within options.
func ChoiceEntry(options ...string) *Entry {
	return &Entry{
		Validate: func(value, _ string, _ *strings.Builder) error {
			for _, opt := range options {
				if strings.EqualFold(opt, value) {
					return nil
				}
			}
			return fmt.Errorf("value %q is not one of %s", value, strings.Join(options, ", "))
		},
		ValHelp: func(out *strings.Builder) {
			fmt.Fprintf(out, "One of: %s", strings.Join(options, ", "))
		},
		ToBinary: func(values *strarray.Array) (interface{}, error) {
			s, _ := values.First()
			for i, opt := range options {
				if strings.EqualFold(opt, s) {
					return i, nil
				}
			}
			return -1, fmt.Errorf("value %q is not one of %s", s, strings.Join(options, ", "))
		},
	}
}

// IntEntry accepts a base-10 integer within [min, max].
func IntEntry(min, max int64) *Entry {
	return &Entry{
		Validate: func(value, _ string, _ *strings.Builder) error {
			n, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return fmt.Errorf("value %q is not an integer", value)
			}
			if n < min || n > max {
				return fmt.Errorf("value %d outside range [%d, %d]", n, min, max)
			}
			return nil
		},
		ValHelp: func(out *strings.Builder) {
			fmt.Fprintf(out, "Integer in range [%d, %d]", min, max)
		},
		ToBinary: func(values *strarray.Array) (interface{}, error) {
			s, _ := values.First()
			return strconv.ParseInt(s, 10, 64)
		},
	}
}

// BoolEntry accepts true/false, yes/no, 1/0 (case-insensitive).
func BoolEntry() *Entry {
	return &Entry{
		Validate: func(value, _ string, _ *strings.Builder) error {
			_, err := parseBool(value)
			return err
		},
		ValHelp: func(out *strings.Builder) {
			out.WriteString("Boolean value (true/false, yes/no, 1/0)")
		},
		ToBinary: func(values *strarray.Array) (interface{}, error) {
			s, _ := values.First()
			return parseBool(s)
		},
	}
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "true", "yes", "1":
		return true, nil
	case "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("value %q is not a boolean", s)
}

// StringListEntry builds a List Entry whose values are each validated
// independently against options (case-insensitive); when options is
// empty, any value is accepted. ToBinary converts the whole entry to a
// []string of every element, in list order.
func StringListEntry(options ...string) *Entry {
	e := &Entry{
		List: true,
		Validate: func(value, _ string, _ *strings.Builder) error {
			if len(options) == 0 {
				return nil
			}
			for _, opt := range options {
				if strings.EqualFold(opt, value) {
					return nil
				}
			}
			return fmt.Errorf("value %q is not one of %s", value, strings.Join(options, ", "))
		},
		ToBinary: func(values *strarray.Array) (interface{}, error) {
			return values.All(), nil
		},
	}
	if len(options) > 0 {
		e.ValHelp = func(out *strings.Builder) {
			fmt.Fprintf(out, "List of: %s", strings.Join(options, ", "))
		}
	} else {
		e.ValHelp = func(out *strings.Builder) {
			out.WriteString("List of strings")
		}
	}
	return e
}

// NetaddrEntry accepts any address netaddr.Parse can decode, optionally
// restricted to one of families (an empty list accepts all). allowPrefix
// mirrors the original's (family, allow-prefix) filter encoding: when
// false, a value carrying a prefix shorter than the family's full width is
// rejected, so the entry only ever holds host addresses.
func NetaddrEntry(allowPrefix bool, families ...netaddr.Family) *Entry {
	allowed := func(f netaddr.Family) bool {
		if len(families) == 0 {
			return true
		}
		for _, fam := range families {
			if fam == f {
				return true
			}
		}
		return false
	}
	return &Entry{
		Validate: func(value, _ string, _ *strings.Builder) error {
			a, err := netaddr.Parse(value)
			if err != nil {
				return err
			}
			if !allowed(a.Family) {
				return fmt.Errorf("address %q has family %s, not permitted here", value, a.Family)
			}
			if !allowPrefix && int(a.PrefixLen) != a.Family.MaxPrefix() {
				return fmt.Errorf("address %q carries a prefix, not permitted here", value)
			}
			return nil
		},
		ValHelp: func(out *strings.Builder) {
			if len(families) == 0 {
				out.WriteString("Network address")
				return
			}
			names := make([]string, len(families))
			for i, f := range families {
				names[i] = f.String()
			}
			fmt.Fprintf(out, "Network address of family: %s", strings.Join(names, ", "))
		},
		ToBinary: func(values *strarray.Array) (interface{}, error) {
			s, _ := values.First()
			return netaddr.Parse(s)
		},
	}
}
