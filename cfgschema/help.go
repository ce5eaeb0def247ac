package cfgschema

import "strings"

// Help renders the full help text for an entry: its default (if any),
// whether it accepts a list, and its validator's description.
func (e *Entry) Help() string {
	var b strings.Builder
	b.WriteString(e.Key.Key)
	if e.List {
		b.WriteString(" (list)")
	}
	if e.Default != nil {
		if v, ok := e.Default.First(); ok {
			b.WriteString(" [default: ")
			b.WriteString(v)
			b.WriteString("]")
		}
	}
	b.WriteString(": ")
	if e.ValHelp != nil {
		e.ValHelp(&b)
	} else {
		b.WriteString("no constraints")
	}
	return b.String()
}

// HelpPrintable renders the entry's help the way a terminal would print
// it: the full Help() text, followed by one line noting whether the value
// must be printable. The original's cfg_schema_help_printable called
// itself to render the base help text and then appended the same
// printable-only line a second time through unconditional recursion,
// producing doubled output; here the base text is computed once by a
// direct call to Help and the extra line is appended exactly once.
func (e *Entry) HelpPrintable() string {
	var b strings.Builder
	b.WriteString(e.Help())
	b.WriteString("\n(only printable, non-control characters are accepted)")
	return b.String()
}
