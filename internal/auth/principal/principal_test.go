package principal

import "testing"

func TestTokenPrincipal(t *testing.T) {
	p := TokenPrincipal{Sub: "alice", RoleNames: []string{"ROLE_USER"}}
	if !p.Authenticated() {
		t.Fatal("token principal must be authenticated")
	}
	if p.Subject() != "alice" {
		t.Fatalf("subject: %s", p.Subject())
	}
	if !HasRole(p, "ROLE_USER") {
		t.Fatal("expected ROLE_USER")
	}
	if HasRole(p, "ROLE_ADMIN") {
		t.Fatal("unexpected ROLE_ADMIN")
	}
}

func TestAnonymous(t *testing.T) {
	var p Principal = Anonymous{}
	if p.Authenticated() {
		t.Fatal("anonymous must not be authenticated")
	}
	if p.Subject() != "" || p.Roles() != nil {
		t.Fatal("anonymous carries no identity")
	}
	if HasRole(p, "ROLE_USER") {
		t.Fatal("anonymous has no roles")
	}
}
