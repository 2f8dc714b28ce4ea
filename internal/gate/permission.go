package gate

import "strings"

// Permission is an allowed action on a resource type, serialized as
// "resource:action". Actions may themselves contain colons
// ("commande:advance:MONTAGE"): only the first colon separates the
// resource from the action.
type Permission string

// NewPermission builds a permission from a resource type and action.
func NewPermission(resourceType string, action Action) Permission {
	return Permission(resourceType + ":" + string(action))
}

// Parse splits a permission into resource type and action.
func (p Permission) Parse() (resourceType string, action Action) {
	parts := strings.SplitN(string(p), ":", 2)
	if len(parts) != 2 {
		return "", ""
	}
	return parts[0], Action(parts[1])
}

// Wildcards for super permissions.
const (
	WildcardAll                       = "*"
	PermissionSuperAdmin   Permission = "*:*"
)

// Matches reports whether this granted permission covers the requested one.
// "*:*" covers everything and "conteneur:*" covers every conteneur action.
func (p Permission) Matches(requested Permission) bool {
	if p == PermissionSuperAdmin || p == requested {
		return true
	}
	res, act := p.Parse()
	reqRes, _ := requested.Parse()
	return res == reqRes && string(act) == WildcardAll
}
