package cfgschema_test

import (
	"strings"
	"testing"

	"github.com/oonf-go/oonf/cfgdb"
	"github.com/oonf-go/oonf/cfgschema"
	"github.com/oonf-go/oonf/strarray"
)

func TestIntMinMaxValidation(t *testing.T) {
	entry := cfgschema.IntEntry(-10, 10)
	cases := []struct {
		value string
		ok    bool
	}{
		{"10", true},
		{"11", false},
		{"1a", false},
		{"-10", true},
	}
	for _, c := range cases {
		err := entry.Validate(c.value, "", &strings.Builder{})
		if c.ok && err != nil {
			t.Errorf("Validate(%q) = %v, want nil", c.value, err)
		}
		if !c.ok && err == nil {
			t.Errorf("Validate(%q) = nil, want error", c.value)
		}
	}
}

func TestDuplicateEntryDefaultAgreement(t *testing.T) {
	s := cfgschema.New()
	s.AddSection(&cfgschema.Section{Type: "iface", Mode: cfgschema.Named},
		&cfgschema.Entry{Key: cfgschema.EntryKey{Key: "mtu"}, Default: mustDefault("1500")})
	// A second fragment registers the same entry without a default; it
	// should pick up the first fragment's agreed default.
	s.AddSection(&cfgschema.Section{Type: "iface", Mode: cfgschema.Named},
		&cfgschema.Entry{Key: cfgschema.EntryKey{Key: "mtu"}})

	def, ok := s.Default("iface", "mtu")
	if !ok {
		t.Fatal("expected agreed default to be found")
	}
	v, _ := def.First()
	if v != "1500" {
		t.Errorf("Default value = %q, want %q", v, "1500")
	}
}

func TestLaterConflictingDefaultOverwritesEarlierEntry(t *testing.T) {
	s := cfgschema.New()
	first := &cfgschema.Entry{Key: cfgschema.EntryKey{Key: "mtu"}, Default: mustDefault("1500")}
	s.AddSection(&cfgschema.Section{Type: "iface", Mode: cfgschema.Named}, first)

	second := &cfgschema.Entry{Key: cfgschema.EntryKey{Key: "mtu"}, Default: mustDefault("9000")}
	s.AddSection(&cfgschema.Section{Type: "iface", Mode: cfgschema.Named}, second)

	def, ok := s.Default("iface", "mtu")
	if !ok {
		t.Fatal("expected agreed default to be found")
	}
	if v, _ := def.First(); v != "9000" {
		t.Errorf("Schema.Default value = %q, want %q", v, "9000")
	}
	if v, _ := first.Default.First(); v != "9000" {
		t.Errorf("earlier-registered Entry.Default = %q, want the later conflicting default %q", v, "9000")
	}
}

func TestValidateReportsUnknownSection(t *testing.T) {
	s := cfgschema.New()
	db := cfgdb.New()
	db.SetEntry("mystery", "", "x", "1", false)

	var log strings.Builder
	err := s.Validate(db, false, false, &log)
	if err == nil {
		t.Fatal("expected validation error for unregistered section type")
	}
	if !strings.Contains(log.String(), "mystery") {
		t.Errorf("log = %q, want mention of unknown section", log.String())
	}
}

func TestValidateCleanupRemovesBadValue(t *testing.T) {
	s := cfgschema.New()
	s.AddSection(&cfgschema.Section{Type: "core", Mode: cfgschema.Unnamed},
		&cfgschema.Entry{Key: cfgschema.EntryKey{Key: "level"}, Validate: cfgschema.IntEntry(0, 3).Validate})

	db := cfgdb.New()
	db.SetEntry("core", "", "level", "99", false)

	var log strings.Builder
	s.Validate(db, true, false, &log)

	if e := db.FindEntry("core", "", "level"); e != nil {
		t.Error("expected cleanup to remove the invalid value")
	}
}

func TestValidateMandatorySectionMissing(t *testing.T) {
	s := cfgschema.New()
	s.AddSection(&cfgschema.Section{Type: "http", Mode: cfgschema.NamedMandatory})

	db := cfgdb.New()
	var log strings.Builder
	if err := s.Validate(db, false, false, &log); err == nil {
		t.Fatal("expected error for missing mandatory section")
	}
}

func TestToBinary(t *testing.T) {
	s := cfgschema.New()
	s.AddSection(&cfgschema.Section{Type: "log", Mode: cfgschema.Unnamed},
		&cfgschema.Entry{Key: cfgschema.EntryKey{Key: "level"}, Field: "Level", ToBinary: cfgschema.IntEntry(-2, 3).ToBinary, Default: mustDefault("0")},
		&cfgschema.Entry{Key: cfgschema.EntryKey{Key: "stderr"}, Field: "Stderr", ToBinary: cfgschema.BoolEntry().ToBinary, Default: mustDefault("false")},
	)

	db := cfgdb.New()
	db.SetEntry("log", "", "level", "2", false)
	db.SetEntry("log", "", "stderr", "true", false)

	var target struct {
		Level  int64
		Stderr bool
	}
	if err := s.ToBinary(db, "log", "", &target); err != nil {
		t.Fatal(err)
	}
	if target.Level != 2 || !target.Stderr {
		t.Errorf("ToBinary produced %+v", target)
	}
}

func TestHelpPrintableNotRecursive(t *testing.T) {
	e := cfgschema.PrintableEntry(64)
	e.Key = cfgschema.EntryKey{Key: "name"}
	help := e.HelpPrintable()
	if strings.Count(help, "only printable") != 1 {
		t.Errorf("HelpPrintable() = %q, expected the printable note exactly once", help)
	}
}

func mustDefault(v string) *strarray.Array {
	return strarray.New(v)
}
