package domain

// Capability describes who may perform an operation. Roles lists the roles
// allowed to call it at all; Owner, when set, must also accept the principal.
type Capability struct {
	Roles []Role
	Owner func(p *Principal) bool
}

// Authorize checks p against c. A missing principal or a role outside c.Roles
// yields ErrUnauthorized; a principal rejected by c.Owner yields ErrForbidden.
// An empty Roles list admits every authenticated principal.
func Authorize(p *Principal, c Capability) error {
	if p == nil || p.UserID == "" {
		return ErrUnauthorized
	}

	if len(c.Roles) > 0 {
		allowed := false
		for _, r := range c.Roles {
			if p.Role == r {
				allowed = true
				break
			}
		}
		if !allowed {
			return ErrUnauthorized
		}
	}

	if c.Owner != nil && !c.Owner(p) {
		return ErrForbidden
	}
	return nil
}

// OwnedBy returns an owner predicate matching principals whose id is userID
func OwnedBy(userID string) func(p *Principal) bool {
	return func(p *Principal) bool {
		return p.UserID == userID
	}
}

// Frequently used capabilities
var (
	AnyAuthenticated = Capability{}
	TreasurerOnly    = Capability{Roles: []Role{RoleBendahara}}
	AdminOnly        = Capability{Roles: []Role{RoleAdministrator}}
	MemberOnly       = Capability{Roles: []Role{RoleAnggota}}
	TreasurerOrAdmin = Capability{Roles: []Role{RoleBendahara, RoleAdministrator}}
)
