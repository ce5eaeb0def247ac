// Package cfgdelta implements the configuration delta engine: given two
// generations of a cfgdb.Database (the state before and after a change),
// it determines which named sections changed and invokes each schema
// section's registered cfgschema.DeltaHandler in ascending priority
// order.
//
// cfgdelta imports both cfgdb and cfgschema; cfgschema imports only
// cfgdb. That one-directional chain is why cfgschema.DeltaCallback is
// expressed in terms of cfgschema's own SectionChange/EntryChange types
// rather than cfgdb's — if cfgschema's callback signature referenced
// cfgdb.NamedSection directly there would be no layering problem, but
// having cfgdelta (the diff engine) own the construction of those values
// from two live databases keeps the diffing logic in one place instead
// of splitting it across packages.
//
// The diffing itself follows a full-snapshot comparison pattern: a full
// pre-image and a full post-image are compared key by key after the
// fact, rather than tracking individual mutations as they happen.
package cfgdelta

import (
	"sort"

	"github.com/oonf-go/oonf/cfgdb"
	"github.com/oonf-go/oonf/cfgschema"
	"github.com/oonf-go/oonf/strarray"
)

// Engine runs a schema's registered delta handlers against database
// generations.
type Engine struct {
	schema *cfgschema.Schema
}

// New returns an Engine bound to schema.
func New(schema *cfgschema.Schema) *Engine {
	return &Engine{schema: schema}
}

type handlerBinding struct {
	sectionType string
	handler     *cfgschema.DeltaHandler
	mode        cfgschema.Mode
}

func (e *Engine) bindings() []handlerBinding {
	var out []handlerBinding
	for _, typeName := range e.schema.SectionTypes() {
		for _, section := range e.schema.Sections(typeName) {
			if section.DeltaHandler != nil {
				out = append(out, handlerBinding{sectionType: typeName, handler: section.DeltaHandler, mode: section.Mode})
			}
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].handler.Priority < out[j].handler.Priority
	})
	return out
}

// Apply compares pre and post and invokes every registered delta handler,
// in ascending priority order, once per named section whose entries
// changed.
func (e *Engine) Apply(pre, post *cfgdb.Database) {
	for _, b := range e.bindings() {
		for _, name := range unionSectionNames(pre, post, b.sectionType) {
			change := buildSectionChange(e.schema, pre, post, b.sectionType, name)
			if !change.Changed {
				continue
			}
			b.handler.Callback(change)
		}
	}
}

// ApplyStartup runs every registered delta handler against post as if it
// were the first generation (pre is treated as empty), for daemon
// startup. A handler is invoked once for each named section that post
// holds; a section type with no section in post gets no callback,
// whatever its mode, so schema defaults alone never trigger a startup
// call. cfgschema.UnnamedOptionalStartupTrigger therefore behaves like
// cfgschema.Unnamed here.
func (e *Engine) ApplyStartup(post *cfgdb.Database) {
	empty := cfgdb.New()
	for _, b := range e.bindings() {
		for _, name := range unionSectionNames(empty, post, b.sectionType) {
			if b.mode == cfgschema.UnnamedOptionalStartupTrigger {
				if post.FindNamedSection(b.sectionType, name) == nil {
					continue
				}
			}
			change := buildSectionChange(e.schema, empty, post, b.sectionType, name)
			if !change.Changed {
				continue
			}
			b.handler.Callback(change)
		}
	}
}

func unionSectionNames(pre, post *cfgdb.Database, typeName string) []string {
	seen := make(map[string]bool)
	var out []string
	add := func(db *cfgdb.Database) {
		st := db.FindSectionType(typeName)
		if st == nil {
			return
		}
		for _, name := range st.SectionNames() {
			if !seen[name] {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	add(pre)
	add(post)
	return out
}

// schemaDefault returns the agreed default for (typeName, key), if any
// schema entry declares one; nil otherwise. It is the "fall back to
// default when absent" rule: an entry whose value reverts to its schema
// default on one side of the diff must compare equal to the schema
// default on the other side, not to an empty value. It defers to
// Schema.Default rather than scanning Entries itself, since that is the
// one place the agreed-upon default across duplicate registrations is
// kept current.
func schemaDefault(schema *cfgschema.Schema, typeName, key string) *strarray.Array {
	if schema == nil {
		return nil
	}
	def, _ := schema.Default(typeName, key)
	return def
}

func buildSectionChange(schema *cfgschema.Schema, pre, post *cfgdb.Database, typeName, name string) cfgschema.SectionChange {
	preNS := pre.FindNamedSection(typeName, name)
	postNS := post.FindNamedSection(typeName, name)

	change := cfgschema.SectionChange{
		SectionType: typeName,
		SectionName: name,
		PreExists:   preNS != nil,
		PostExists:  postNS != nil,
	}
	if preNS == nil && postNS == nil {
		return change
	}
	if (preNS == nil) != (postNS == nil) {
		change.Changed = true
	}

	keys := make(map[string]bool)
	if preNS != nil {
		for _, k := range preNS.EntryKeys() {
			keys[k] = true
		}
	}
	if postNS != nil {
		for _, k := range postNS.EntryKeys() {
			keys[k] = true
		}
	}

	for key := range keys {
		def := schemaDefault(schema, typeName, key)
		preArr := def
		if preNS != nil {
			if v := preNS.Entry(key); v != nil {
				preArr = v.Value
			}
		}
		postArr := def
		if postNS != nil {
			if v := postNS.Entry(key); v != nil {
				postArr = v.Value
			}
		}
		changed := !strarray.Equal(preArr, postArr)
		if changed {
			change.Changed = true
		}
		change.Entries = append(change.Entries, cfgschema.EntryChange{
			Key: key, Pre: preArr.All(), Post: postArr.All(), Changed: changed,
		})
	}
	sort.Slice(change.Entries, func(i, j int) bool {
		return change.Entries[i].Key < change.Entries[j].Key
	})
	return change
}
