// Package acl implements the ordered network-address access list
// grounded on original_source/src/core/olsr_netaddr_acl.c: separate
// accept and reject
// rule lists plus two control booleans, reject_first and accept_default,
// toggled by literal configuration keywords.
package acl

import (
	"fmt"
	"strings"

	"github.com/oonf-go/oonf/netaddr"
)

// ACL holds the ordered accept/reject lists and the two control flags.
type ACL struct {
	Accept        []netaddr.Addr
	Reject        []netaddr.Addr
	AcceptDefault bool
	RejectFirst   bool
}

// New returns an empty ACL: no rules, reject by default, reject checked
// after accept (matching the original's zero-value semantics).
func New() *ACL {
	return &ACL{}
}

// Add parses one configuration token: "+addr[/prefix]" (accept, "+"
// optional), "-addr[/prefix]" (reject), or one of the literal keywords
// "first_accept", "first_reject", "default_accept", "default_reject".
// Each keyword may appear more than once; the last one registered wins.
func (a *ACL) Add(token string) error {
	switch strings.ToLower(token) {
	case "first_accept":
		a.RejectFirst = false
		return nil
	case "first_reject":
		a.RejectFirst = true
		return nil
	case "default_accept":
		a.AcceptDefault = true
		return nil
	case "default_reject":
		a.AcceptDefault = false
		return nil
	}

	reject := false
	spec := token
	switch {
	case strings.HasPrefix(spec, "-"):
		reject = true
		spec = spec[1:]
	case strings.HasPrefix(spec, "+"):
		spec = spec[1:]
	}
	addr, err := netaddr.Parse(spec)
	if err != nil {
		return fmt.Errorf("acl: %w", err)
	}
	if reject {
		a.Reject = append(a.Reject, addr)
	} else {
		a.Accept = append(a.Accept, addr)
	}
	return nil
}

func matches(list []netaddr.Addr, addr netaddr.Addr) bool {
	for _, net := range list {
		if net.Equal(addr) || netaddr.IsInSubnet(net, addr) {
			return true
		}
	}
	return false
}

// CheckAccept reports whether addr is accepted, following exactly the
// original's order of checks:
//
//	if reject_first and addr ∈ reject: return false
//	if addr ∈ accept: return true
//	if not reject_first and addr ∈ reject: return false
//	return accept_default
func (a *ACL) CheckAccept(addr netaddr.Addr) bool {
	if a.RejectFirst && matches(a.Reject, addr) {
		return false
	}
	if matches(a.Accept, addr) {
		return true
	}
	if !a.RejectFirst && matches(a.Reject, addr) {
		return false
	}
	return a.AcceptDefault
}
