package authz

// Role — строковый тег роли. Пользователь может нести несколько тегов.
type Role string

const (
	RoleSales     Role = "sales"
	RoleManager   Role = "manager"
	RoleExecutive Role = "executive"
	RoleAudit     Role = "audit"
	RoleAdmin     Role = "admin"
)

// Principal — проверенный субъект запроса: id и набор ролей.
// Ничего другого из identity-слоя сюда не протекает.
type Principal struct {
	UserID int
	Roles  RoleSet
}

type RoleSet map[Role]struct{}

func NewRoleSet(tags ...string) RoleSet {
	set := make(RoleSet, len(tags))
	for _, t := range tags {
		set[Role(t)] = struct{}{}
	}
	return set
}

func (s RoleSet) Has(r Role) bool {
	_, ok := s[r]
	return ok
}

func (s RoleSet) Tags() []string {
	tags := make([]string, 0, len(s))
	for r := range s {
		tags = append(tags, string(r))
	}
	return tags
}

// IsElevated: manager и выше действуют по чужим сделкам.
func (p Principal) IsElevated() bool {
	return p.Roles.Has(RoleManager) || p.Roles.Has(RoleExecutive) || p.Roles.Has(RoleAdmin)
}

func (p Principal) IsExecutive() bool {
	return p.Roles.Has(RoleExecutive)
}

func (p Principal) IsReadOnly() bool {
	return p.Roles.Has(RoleAudit) && len(p.Roles) == 1
}

// CanTouchDeal — владелец или повышенная роль.
func (p Principal) CanTouchDeal(ownerID int) bool {
	return p.UserID == ownerID || p.IsElevated()
}
