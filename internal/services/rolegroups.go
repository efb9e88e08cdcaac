package services

import "sort"

// RoleGroup is one schedulable staff segment. Each group is scheduled as a
// unit: week saves replace all assignments of the group's members, and the
// CatalogRole decides which shift definitions apply.
type RoleGroup struct {
	Name        string   `json:"name"`
	Roles       []string `json:"roles"`
	CatalogRole string   `json:"catalog_role"`
}

var roleGroups = map[string]RoleGroup{
	"bartenders": {Name: "bartenders", Roles: []string{"bartender"}, CatalogRole: "bartender"},
	"waiters":    {Name: "waiters", Roles: []string{"waiter"}, CatalogRole: "waiter"},
	"skullers":   {Name: "skullers", Roles: []string{"skullers"}, CatalogRole: "skullers"},
	"managers":   {Name: "managers", Roles: []string{"manager", "general_manager", "system_admin"}, CatalogRole: "manager"},
}

// RoleGroupByName looks up a role group by its URL name.
func RoleGroupByName(name string) (RoleGroup, bool) {
	group, ok := roleGroups[name]
	return group, ok
}

// RoleGroupNames returns all group names in stable order.
func RoleGroupNames() []string {
	names := make([]string, 0, len(roleGroups))
	for name := range roleGroups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
