package cfgdelta_test

import (
	"testing"

	"github.com/oonf-go/oonf/cfgdb"
	"github.com/oonf-go/oonf/cfgdelta"
	"github.com/oonf-go/oonf/cfgschema"
)

func TestApplyInvokesHandlerOnChange(t *testing.T) {
	var got []cfgschema.SectionChange
	s := cfgschema.New()
	s.AddSection(&cfgschema.Section{
		Type: "iface",
		Mode: cfgschema.Named,
		DeltaHandler: &cfgschema.DeltaHandler{
			Priority: 0,
			Callback: func(c cfgschema.SectionChange) { got = append(got, c) },
		},
	}, &cfgschema.Entry{Key: cfgschema.EntryKey{Key: "mtu"}})

	pre := cfgdb.New()
	pre.SetEntry("iface", "eth0", "mtu", "1500", false)

	post := cfgdb.New()
	post.SetEntry("iface", "eth0", "mtu", "9000", false)

	cfgdelta.New(s).Apply(pre, post)

	if len(got) != 1 {
		t.Fatalf("handler invoked %d times, want 1", len(got))
	}
	if !got[0].Changed {
		t.Error("expected SectionChange.Changed == true")
	}
	if got[0].Entries[0].Pre[0] != "1500" || got[0].Entries[0].Post[0] != "9000" {
		t.Errorf("unexpected entry change: %+v", got[0].Entries[0])
	}
}

func TestApplySkipsUnchangedSections(t *testing.T) {
	var calls int
	s := cfgschema.New()
	s.AddSection(&cfgschema.Section{
		Type:         "iface",
		Mode:         cfgschema.Named,
		DeltaHandler: &cfgschema.DeltaHandler{Callback: func(cfgschema.SectionChange) { calls++ }},
	}, &cfgschema.Entry{Key: cfgschema.EntryKey{Key: "mtu"}})

	db := cfgdb.New()
	db.SetEntry("iface", "eth0", "mtu", "1500", false)

	cfgdelta.New(s).Apply(db, db)

	if calls != 0 {
		t.Errorf("handler invoked %d times for an unchanged database, want 0", calls)
	}
}

func TestPriorityOrdering(t *testing.T) {
	var order []string
	s := cfgschema.New()
	s.AddSection(&cfgschema.Section{
		Type:         "b",
		Mode:         cfgschema.Unnamed,
		DeltaHandler: &cfgschema.DeltaHandler{Priority: 10, Callback: func(cfgschema.SectionChange) { order = append(order, "b") }},
	}, &cfgschema.Entry{Key: cfgschema.EntryKey{Key: "k"}})
	s.AddSection(&cfgschema.Section{
		Type:         "a",
		Mode:         cfgschema.Unnamed,
		DeltaHandler: &cfgschema.DeltaHandler{Priority: 1, Callback: func(cfgschema.SectionChange) { order = append(order, "a") }},
	}, &cfgschema.Entry{Key: cfgschema.EntryKey{Key: "k"}})

	pre := cfgdb.New()
	post := cfgdb.New()
	post.SetEntry("a", "", "k", "1", false)
	post.SetEntry("b", "", "k", "1", false)

	cfgdelta.New(s).Apply(pre, post)

	if len(order) != 2 || order[0] != "a" || order[1] != "b" {
		t.Errorf("handler order = %v, want [a b]", order)
	}
}

func TestApplyStartupSkipsOptionalTriggerWithoutValue(t *testing.T) {
	var calls int
	s := cfgschema.New()
	s.AddSection(&cfgschema.Section{
		Type:         "core",
		Mode:         cfgschema.UnnamedOptionalStartupTrigger,
		DeltaHandler: &cfgschema.DeltaHandler{Callback: func(cfgschema.SectionChange) { calls++ }},
	}, &cfgschema.Entry{Key: cfgschema.EntryKey{Key: "k"}})

	post := cfgdb.New()
	cfgdelta.New(s).ApplyStartup(post)

	if calls != 0 {
		t.Errorf("expected no startup call when section absent, got %d", calls)
	}

	post.SetEntry("core", "", "k", "v", false)
	cfgdelta.New(s).ApplyStartup(post)
	if calls != 1 {
		t.Errorf("expected one startup call once section present, got %d", calls)
	}
}
