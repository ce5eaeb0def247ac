package cfgdb_test

import (
	"testing"

	"github.com/oonf-go/oonf/cfgdb"
)

func TestSetAndGetEntryValue(t *testing.T) {
	db := cfgdb.New()
	if err := db.SetEntry("section_type", "sec_name", "entry", "value", false); err != nil {
		t.Fatal(err)
	}
	v, ok := db.GetEntryValue("section_type", "sec_name", "entry")
	if !ok {
		t.Fatal("expected value to be found")
	}
	got, _ := v.First()
	if got != "value" {
		t.Errorf("GetEntryValue = %q, want %q", got, "value")
	}
}

func TestListAppendAndRemoveElement(t *testing.T) {
	db := cfgdb.New()
	if err := db.SetEntry("s", "n", "k", "test 1", false); err != nil {
		t.Fatal(err)
	}
	if err := db.SetEntry("s", "n", "k", "test 2", true); err != nil {
		t.Fatal(err)
	}
	if err := db.SetEntry("s", "n", "k", "test 3", true); err != nil {
		t.Fatal(err)
	}
	if got := db.EntryListSize("s", "n", "k"); got != 3 {
		t.Fatalf("EntryListSize = %d, want 3", got)
	}

	e := db.FindEntry("s", "n", "k")
	got := e.Value.All()
	want := []string{"test 1", "test 2", "test 3"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("element %d = %q, want %q", i, got[i], want[i])
		}
	}

	if err := db.RemoveElement("s", "n", "k", "test 2"); err != nil {
		t.Fatal(err)
	}
	got = db.FindEntry("s", "n", "k").Value.All()
	wantAfter := []string{"test 1", "test 3"}
	if len(got) != len(wantAfter) {
		t.Fatalf("after remove: %v, want %v", got, wantAfter)
	}
	for i := range wantAfter {
		if got[i] != wantAfter[i] {
			t.Errorf("after remove element %d = %q, want %q", i, got[i], wantAfter[i])
		}
	}
}

func TestRemovingLastValueRemovesEntry(t *testing.T) {
	db := cfgdb.New()
	db.SetEntry("s", "n", "k", "only", false)
	if err := db.RemoveElement("s", "n", "k", "only"); err != nil {
		t.Fatal(err)
	}
	if e := db.FindEntry("s", "n", "k"); e != nil {
		t.Error("expected entry to be removed once its last value is removed")
	}
}

func TestCaseInsensitiveLookupPreservesCase(t *testing.T) {
	db := cfgdb.New()
	db.SetEntry("Section", "Name", "Key", "v", false)
	if e := db.FindEntry("SECTION", "name", "KEY"); e == nil {
		t.Fatal("expected case-insensitive lookup to succeed")
	} else if e.Key != "Key" {
		t.Errorf("Entry.Key = %q, want original case %q", e.Key, "Key")
	}
}

func TestIterationIsSorted(t *testing.T) {
	db := cfgdb.New()
	db.AddSectionType("zebra")
	db.AddSectionType("alpha")
	db.AddSectionType("mango")
	got := db.SectionTypeNames()
	want := []string{"alpha", "mango", "zebra"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("SectionTypeNames()[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestInvalidKeyRejected(t *testing.T) {
	db := cfgdb.New()
	if err := db.SetEntry("bad type", "", "key", "v", false); err == nil {
		t.Error("expected error for invalid section-type key")
	}
	if err := db.SetEntry("type", "", "bad key", "v", false); err == nil {
		t.Error("expected error for invalid entry key")
	}
}

func TestCopyDoesNotWipeDestination(t *testing.T) {
	src := cfgdb.New()
	src.SetEntry("s", "n", "k1", "v1", false)

	dst := cfgdb.New()
	dst.SetEntry("s", "n", "k2", "existing", false)

	if err := cfgdb.Copy(dst, src); err != nil {
		t.Fatal(err)
	}
	if e := dst.FindEntry("s", "n", "k2"); e == nil {
		t.Error("expected pre-existing dst entry to survive Copy")
	}
	if e := dst.FindEntry("s", "n", "k1"); e == nil {
		t.Error("expected src entry to be copied into dst")
	}
}

func TestUnnamedSectionUsesEmptyName(t *testing.T) {
	db := cfgdb.New()
	db.SetEntry("global", "", "debug", "true", false)
	ns := db.FindNamedSection("global", "")
	if ns == nil {
		t.Fatal("expected unnamed section to exist")
	}
	if ns.Name != "" {
		t.Errorf("NamedSection.Name = %q, want empty", ns.Name)
	}
}
