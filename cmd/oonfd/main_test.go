package main

import (
	"testing"

	"github.com/oonf-go/oonf/acl"
	"github.com/oonf-go/oonf/cfgcmd"
	"github.com/oonf-go/oonf/cfgdb"
	"github.com/oonf-go/oonf/cfgdelta"
	"github.com/oonf-go/oonf/cfgio"
	"github.com/oonf-go/oonf/cfgschema"
	"github.com/oonf-go/oonf/netaddr"
	"github.com/oonf-go/oonf/pbb"
)

func TestInterfaceSectionBuildsACLAndInterface(t *testing.T) {
	writer := pbb.NewWriter()
	ifaces := map[string]*acl.ACL{}

	schema := cfgschema.New()
	schema.AddSection(interfaceSection(writer, ifaces))

	db := cfgdb.New()
	db.SetSchema(schema)
	db.SetEntry("interface", "eth0", "mtu", "1280", false)
	db.SetEntry("interface", "eth0", "bindto", "10.0.0.1", false)
	db.SetEntry("interface", "eth0", "acl", "+10.0.0.0/24", false)

	cfgdelta.New(schema).ApplyStartup(db)

	list, ok := ifaces["eth0"]
	if !ok {
		t.Fatal("interface section delta handler did not register an ACL for eth0")
	}
	addr, err := netaddr.Parse("10.0.0.5")
	if err != nil {
		t.Fatal(err)
	}
	if !list.CheckAccept(addr) {
		t.Error("expected 10.0.0.5 to be accepted under +10.0.0.0/24")
	}
}

func TestInterfaceSectionRemovalClearsACL(t *testing.T) {
	writer := pbb.NewWriter()
	ifaces := map[string]*acl.ACL{}
	schema := cfgschema.New()
	schema.AddSection(interfaceSection(writer, ifaces))

	pre := cfgdb.New()
	pre.SetEntry("interface", "eth0", "mtu", "1280", false)
	pre.SetEntry("interface", "eth0", "bindto", "10.0.0.1", false)

	engine := cfgdelta.New(schema)
	engine.ApplyStartup(pre)
	if _, ok := ifaces["eth0"]; !ok {
		t.Fatal("setup: eth0 should be registered before removal")
	}

	post := cfgdb.New()
	engine.Apply(pre, post)

	if _, ok := ifaces["eth0"]; ok {
		t.Error("expected eth0 to be removed once its section disappeared")
	}
}

func TestSetFlagsApplyThroughSession(t *testing.T) {
	writer := pbb.NewWriter()
	ifaces := map[string]*acl.ACL{}
	schema := cfgschema.New()
	schema.AddSection(interfaceSection(writer, ifaces))

	db := cfgdb.New()
	db.SetSchema(schema)
	session := &cfgcmd.Session{DB: db, Schema: schema, Registry: cfgio.NewRegistry()}

	for _, expr := range []string{"interface[eth0].", "mtu=1280", "bindto=10.0.0.1", "acl=+10.0.0.0/24"} {
		if err := session.Set(expr, false); err != nil {
			t.Fatalf("Set(%q): %v", expr, err)
		}
	}

	cfgdelta.New(schema).ApplyStartup(db)
	if _, ok := ifaces["eth0"]; !ok {
		t.Fatal("expected -set expressions to build an eth0 interface through the delta handler")
	}
}
