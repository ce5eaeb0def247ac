// Package cfgcmd implements the command-line configuration expression
// grammar and the set/remove/get/load/save/format/schema operations that
// drive a cfgdb.Database from it.
//
// The grammar is small enough that a hand-written tokenizer is preferable
// to pulling in a regexp-based parser dependency: an
// expression is `[type[name].][key[=value]]`, and a Session remembers the
// last `type[name].` prefix it saw so a follow-up expression that omits
// the prefix (just `key=value`) still targets the same section — the
// "sticky current type/name" behavior the original CLI exposes across a
// sequence of `--set` flags.
package cfgcmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/oonf-go/oonf/cfgdb"
	"github.com/oonf-go/oonf/cfgio"
	"github.com/oonf-go/oonf/cfgschema"
)

// Expr is one parsed `[type[name].][key[=value]]` expression.
type Expr struct {
	Type     string
	HasType  bool
	Name     string
	HasName  bool
	Key      string
	HasKey   bool
	Value    string
	HasValue bool
}

func isIdentStart(b byte) bool {
	return b == '_' || (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

func isIdentByte(b byte) bool {
	return isIdentStart(b) || (b >= '0' && b <= '9')
}

func isIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentByte(s[i]) {
			return false
		}
	}
	return true
}

// ParseExpr parses one command-line configuration expression. It returns
// an error if the expression does not match
// `^(([A-Za-z_]\w*)(\[([A-Za-z_]\w*)\])?\.)?([A-Za-z_]\w*)?(=(.*))?$`.
func ParseExpr(s string) (Expr, error) {
	var e Expr

	left := s
	if idx := strings.IndexByte(s, '='); idx >= 0 {
		left = s[:idx]
		e.Value = s[idx+1:]
		e.HasValue = true
	}

	prefix, key := splitPrefix(left)
	if prefix != "" {
		typeName, name, hasName, err := parsePrefix(prefix)
		if err != nil {
			return Expr{}, err
		}
		e.Type = typeName
		e.HasType = true
		e.Name = name
		e.HasName = hasName
	}
	if key != "" {
		if !isIdent(key) {
			return Expr{}, fmt.Errorf("cfgcmd: invalid key %q in expression %q", key, s)
		}
		e.Key = key
		e.HasKey = true
	}
	return e, nil
}

// splitPrefix finds the "type[name]." prefix, respecting brackets (a '.'
// inside "[...]" does not count as the prefix/key separator), and returns
// the prefix (without its trailing '.') and the remaining key text.
func splitPrefix(left string) (prefix, key string) {
	depth := 0
	for i := 0; i < len(left); i++ {
		switch left[i] {
		case '[':
			depth++
		case ']':
			if depth > 0 {
				depth--
			}
		case '.':
			if depth == 0 {
				return left[:i], left[i+1:]
			}
		}
	}
	return "", left
}

func parsePrefix(prefix string) (typeName, name string, hasName bool, err error) {
	if idx := strings.IndexByte(prefix, '['); idx >= 0 {
		if !strings.HasSuffix(prefix, "]") {
			return "", "", false, fmt.Errorf("cfgcmd: unterminated [name] in %q", prefix)
		}
		typeName = prefix[:idx]
		name = prefix[idx+1 : len(prefix)-1]
		hasName = true
	} else {
		typeName = prefix
	}
	if !isIdent(typeName) {
		return "", "", false, fmt.Errorf("cfgcmd: invalid section type %q", typeName)
	}
	if hasName && !isIdent(name) {
		return "", "", false, fmt.Errorf("cfgcmd: invalid section name %q", name)
	}
	return typeName, name, hasName, nil
}

// Session runs a sequence of expressions against a database, carrying the
// sticky current-type/current-name state between calls.
type Session struct {
	DB       *cfgdb.Database
	Schema   *cfgschema.Schema
	Registry *cfgio.Registry

	curType string
	curName string
}

// NewSession returns a Session bound to db (required), with optional
// schema/registry for the Schema/Load/Save/Format commands.
func NewSession(db *cfgdb.Database) *Session {
	return &Session{DB: db, Registry: cfgio.NewRegistry()}
}

// resolve applies an expression against the session's sticky state,
// updating it from any type/name the expression itself specifies.
func (s *Session) resolve(e Expr) (typeName, name string, err error) {
	if e.HasType {
		s.curType = e.Type
		s.curName = e.Name // "" when the expression names no section
	}
	if s.curType == "" {
		return "", "", fmt.Errorf("cfgcmd: no current section type")
	}
	return s.curType, s.curName, nil
}

// Set applies `--set expr`: if expr carries a key=value pair, the value
// is written (replacing any existing value unless append is true, in
// which case it is added to the entry's list). An expression that only
// names a section (e.g. "type[name].") updates the sticky state and
// creates the section if it doesn't exist yet.
func (s *Session) Set(expr string, append_ bool) error {
	e, err := ParseExpr(expr)
	if err != nil {
		return err
	}
	typeName, name, err := s.resolve(e)
	if err != nil {
		return err
	}
	if !e.HasKey {
		_, err := s.DB.AddSection(typeName, name)
		return err
	}
	if !e.HasValue {
		return fmt.Errorf("cfgcmd: set requires a value for %s.%s.%s", typeName, name, e.Key)
	}
	return s.DB.SetEntry(typeName, name, e.Key, e.Value, append_)
}

// Remove applies `--remove expr`: removes a single value (if the
// expression carries one), otherwise the whole entry, named section, or
// section type, whichever the expression specifies.
func (s *Session) Remove(expr string) error {
	e, err := ParseExpr(expr)
	if err != nil {
		return err
	}
	typeName, name, err := s.resolve(e)
	if err != nil {
		return err
	}
	switch {
	case e.HasKey && e.HasValue:
		return s.DB.RemoveElement(typeName, name, e.Key, e.Value)
	case e.HasKey:
		s.DB.RemoveEntry(typeName, name, e.Key)
	case e.HasName:
		s.DB.RemoveNamedSection(typeName, name)
	default:
		s.DB.RemoveSectionType(typeName)
	}
	return nil
}

// Get applies `--get expr`, returning the resolved entry's values (or the
// schema default, per cfgdb.GetEntryValue). ok is false if nothing was
// found.
func (s *Session) Get(expr string) (values []string, ok bool, err error) {
	e, err := ParseExpr(expr)
	if err != nil {
		return nil, false, err
	}
	typeName, name, err := s.resolve(e)
	if err != nil {
		return nil, false, err
	}
	if !e.HasKey {
		return nil, false, fmt.Errorf("cfgcmd: get requires a key")
	}
	arr, found := s.DB.GetEntryValue(typeName, name, e.Key)
	if !found {
		return nil, false, nil
	}
	return arr.All(), true, nil
}

// Load reads a database from url via the session's format registry,
// replacing DB's content (the existing database is discarded, matching
// the original CLI's "load" semantics, as opposed to "merge").
func (s *Session) Load(url string) error {
	db, err := s.Registry.Load(url)
	if err != nil {
		return err
	}
	if s.Schema != nil {
		db.SetSchema(s.Schema)
	}
	*s.DB = *db
	return nil
}

// Save writes the session's database to url via the format registry.
func (s *Session) Save(url string) error {
	return s.Registry.Save(url, s.DB)
}

// Format writes the name of every registered I/O format to out, one per
// line, sorted.
func (s *Session) Format(out io.Writer) {
	for _, name := range s.Registry.Names() {
		fmt.Fprintln(out, name)
	}
}

// SchemaHelp writes help text for every schema entry matching expr's
// resolved type (and key, if given) to out, one entry per line.
func (s *Session) SchemaHelp(expr string, out io.Writer) error {
	if s.Schema == nil {
		return fmt.Errorf("cfgcmd: no schema attached")
	}
	e, err := ParseExpr(expr)
	if err != nil {
		return err
	}
	typeName, _, err := s.resolve(e)
	if err != nil {
		return err
	}
	for _, section := range s.Schema.Sections(typeName) {
		for _, entry := range section.Entries {
			if e.HasKey && entry.Key.Key != e.Key {
				continue
			}
			fmt.Fprintln(out, entry.Help())
		}
	}
	return nil
}

// ExitCode maps err to the process exit code: 0 for success, 1 for any
// configuration error. Host-specific failures (I/O, etc.) are the
// caller's concern and are not modeled here.
func ExitCode(err error) int {
	if err != nil {
		return 1
	}
	return 0
}
