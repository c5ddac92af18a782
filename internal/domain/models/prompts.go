package models

// Role identifies which instruction template a prompt override applies to.
type Role string

const (
	RoleAsk         Role = "ask"
	RoleSQL         Role = "sql"
	RoleSuggestions Role = "suggestions"
)

// Roles returns every prompt role, in a stable order.
func Roles() []Role {
	return []Role{RoleAsk, RoleSQL, RoleSuggestions}
}
