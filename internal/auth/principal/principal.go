package principal

// Principal is the identity resolved once at the filter boundary.
// Downstream code depends only on Subject and Roles, never on the raw
// credential the identity came from.
type Principal interface {
	Subject() string
	Roles() []string
	Authenticated() bool
}

// TokenPrincipal is an identity backed by a verified access token.
type TokenPrincipal struct {
	Sub       string
	RoleNames []string
}

func (p TokenPrincipal) Subject() string     { return p.Sub }
func (p TokenPrincipal) Roles() []string     { return p.RoleNames }
func (p TokenPrincipal) Authenticated() bool { return true }

// Anonymous is the identity of a request that presented no credential.
type Anonymous struct{}

func (Anonymous) Subject() string     { return "" }
func (Anonymous) Roles() []string     { return nil }
func (Anonymous) Authenticated() bool { return false }

// HasRole reports whether the principal carries the named role.
func HasRole(p Principal, role string) bool {
	for _, r := range p.Roles() {
		if r == role {
			return true
		}
	}
	return false
}
