package acl_test

import (
	"testing"

	"github.com/oonf-go/oonf/acl"
	"github.com/oonf-go/oonf/netaddr"
)

func addr(t *testing.T, s string) netaddr.Addr {
	t.Helper()
	a, err := netaddr.Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return a
}

func TestDefaultClosed(t *testing.T) {
	a := acl.New()
	if a.CheckAccept(addr(t, "10.0.0.1")) {
		t.Error("expected empty ACL to reject everything")
	}
}

// TestRejectFirstOverridesAcceptList checks that reject_first makes a
// matching reject rule win even when a narrower accept rule also matches,
// until a later first_accept flips the precedence back.
func TestRejectFirstOverridesAcceptList(t *testing.T) {
	a := acl.New()
	for _, tok := range []string{"-10.0.0.0/8", "+10.1.2.3", "default_reject", "first_reject"} {
		if err := a.Add(tok); err != nil {
			t.Fatal(err)
		}
	}
	if a.CheckAccept(addr(t, "10.1.2.3")) {
		t.Error("expected reject_first to catch 10.1.2.3 before the accept list is consulted")
	}

	a.Add("first_accept")
	if !a.CheckAccept(addr(t, "10.1.2.3")) {
		t.Error("expected first_accept to let the accept list override the reject rule")
	}
}

func TestAcceptListChecksBeforeTrailingReject(t *testing.T) {
	a := acl.New()
	a.Add("-10.0.0.0/8")
	a.Add("+10.1.2.3")
	// reject_first is false (default), so the accept list is consulted
	// before the reject list.
	if !a.CheckAccept(addr(t, "10.1.2.3")) {
		t.Error("expected accept entry to win when reject_first is false")
	}
	if a.CheckAccept(addr(t, "10.9.9.9")) {
		t.Error("expected the broader reject rule to still apply")
	}
}

func TestDefaultAcceptKeyword(t *testing.T) {
	a := acl.New()
	a.Add("default_accept")
	if !a.CheckAccept(addr(t, "192.168.1.1")) {
		t.Error("expected default_accept to allow unmatched addresses")
	}
}

func TestLastControlKeywordWins(t *testing.T) {
	// 1.2.3.4 matches both the accept and reject list; only RejectFirst
	// decides which one wins.
	a := acl.New()
	a.Add("first_reject")
	a.Add("first_accept")
	a.Add("+1.2.3.4")
	a.Add("-1.2.3.4")
	if !a.CheckAccept(addr(t, "1.2.3.4")) {
		t.Error("expected the second first_* keyword (first_accept) to leave RejectFirst false, letting accept win")
	}
}
