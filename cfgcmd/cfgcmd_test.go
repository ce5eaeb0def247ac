package cfgcmd_test

import (
	"strings"
	"testing"

	"github.com/oonf-go/oonf/cfgcmd"
	"github.com/oonf-go/oonf/cfgdb"
)

func TestParseExprForms(t *testing.T) {
	cases := []struct {
		in      string
		want    cfgcmd.Expr
		wantErr bool
	}{
		{in: "iface[eth0].mtu=1500", want: cfgcmd.Expr{Type: "iface", HasType: true, Name: "eth0", HasName: true, Key: "mtu", HasKey: true, Value: "1500", HasValue: true}},
		{in: "log.level=2", want: cfgcmd.Expr{Type: "log", HasType: true, Key: "level", HasKey: true, Value: "2", HasValue: true}},
		{in: "mtu=1500", want: cfgcmd.Expr{Key: "mtu", HasKey: true, Value: "1500", HasValue: true}},
		{in: "iface[eth0].", want: cfgcmd.Expr{Type: "iface", HasType: true, Name: "eth0", HasName: true}},
		{in: "mtu", want: cfgcmd.Expr{Key: "mtu", HasKey: true}},
		{in: "1bad=x", wantErr: true},
	}
	for _, c := range cases {
		got, err := cfgcmd.ParseExpr(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseExpr(%q): expected error, got none", c.in)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseExpr(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseExpr(%q) = %+v, want %+v", c.in, got, c.want)
		}
	}
}

func TestSessionStickySection(t *testing.T) {
	db := cfgdb.New()
	s := cfgcmd.NewSession(db)

	if err := s.Set("iface[eth0].", false); err != nil {
		t.Fatalf("Set section: %v", err)
	}
	if err := s.Set("mtu=1500", false); err != nil {
		t.Fatalf("Set key (sticky): %v", err)
	}
	if err := s.Set("speed=1000", false); err != nil {
		t.Fatalf("Set second key (sticky): %v", err)
	}

	values, ok, err := s.Get("mtu")
	if err != nil || !ok {
		t.Fatalf("Get(mtu) ok=%v err=%v", ok, err)
	}
	if len(values) != 1 || values[0] != "1500" {
		t.Errorf("Get(mtu) = %v, want [1500]", values)
	}

	values, ok, err = s.Get("speed")
	if err != nil || !ok || values[0] != "1000" {
		t.Errorf("Get(speed) = %v ok=%v err=%v, want [1000]", values, ok, err)
	}
}

func TestSessionSetAppendAndRemoveElement(t *testing.T) {
	db := cfgdb.New()
	s := cfgcmd.NewSession(db)

	if err := s.Set("list[x].k=a", false); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("k=b", true); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("k=c", true); err != nil {
		t.Fatal(err)
	}
	values, _, _ := s.Get("k")
	if strings.Join(values, ",") != "a,b,c" {
		t.Fatalf("values = %v, want [a b c]", values)
	}

	if err := s.Remove("k=b"); err != nil {
		t.Fatal(err)
	}
	values, _, _ = s.Get("k")
	if strings.Join(values, ",") != "a,c" {
		t.Fatalf("after remove values = %v, want [a c]", values)
	}
}

func TestExitCode(t *testing.T) {
	if cfgcmd.ExitCode(nil) != 0 {
		t.Error("ExitCode(nil) != 0")
	}
	db := cfgdb.New()
	s := cfgcmd.NewSession(db)
	_, _, err := s.Get("mtu") // no current section type yet
	if cfgcmd.ExitCode(err) != 1 {
		t.Error("ExitCode(err) != 1")
	}
}
