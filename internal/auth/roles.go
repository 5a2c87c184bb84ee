package auth

import (
	"slices"

	"leaddesk/internal/models"
)

// Permission names a gated area of the dashboard.
type Permission string

const (
	PermDashboard  Permission = "dashboard"
	PermLeads      Permission = "leads"
	PermProposals  Permission = "proposals"
	PermTemplates  Permission = "templates"
	PermSpareParts Permission = "spare-parts"
	PermReports    Permission = "reports"
	PermUsers      Permission = "users"
	PermSettings   Permission = "settings"
	PermAssignLead Permission = "assign-lead"
)

var everyone = []models.Role{models.RoleAdmin, models.RoleManager, models.RoleEngineer, models.RoleSales}

// MenuItem is one entry of the dashboard navigation.
type MenuItem struct {
	Key   Permission    `json:"key"`
	Label string        `json:"label"`
	Path  string        `json:"path"`
	Roles []models.Role `json:"-"`
}

// Menu is the navigation in display order with the roles allowed to see each
// entry.
var Menu = []MenuItem{
	{Key: PermDashboard, Label: "Dashboard", Path: "/dashboard", Roles: everyone},
	{Key: PermLeads, Label: "Leads", Path: "/leads", Roles: everyone},
	{Key: PermProposals, Label: "Proposals", Path: "/proposals", Roles: everyone},
	{Key: PermTemplates, Label: "Proposal Templates", Path: "/templates", Roles: everyone},
	{Key: PermSpareParts, Label: "Spare Parts", Path: "/spare-parts", Roles: everyone},
	{Key: PermReports, Label: "Reports", Path: "/reports", Roles: []models.Role{models.RoleAdmin, models.RoleManager}},
	{Key: PermUsers, Label: "Users", Path: "/users", Roles: []models.Role{models.RoleAdmin}},
	{Key: PermSettings, Label: "Settings", Path: "/settings", Roles: everyone},
}

// actions are gated operations that have no menu entry.
var actions = map[Permission][]models.Role{
	PermAssignLead: {models.RoleAdmin},
}

// Allowed reports whether role may use p.
func Allowed(role models.Role, p Permission) bool {
	if roles, ok := actions[p]; ok {
		return slices.Contains(roles, role)
	}
	for _, item := range Menu {
		if item.Key == p {
			return slices.Contains(item.Roles, role)
		}
	}
	return false
}

// VisibleMenu returns the menu entries role can see, in display order.
func VisibleMenu(role models.Role) []MenuItem {
	out := []MenuItem{}
	for _, item := range Menu {
		if slices.Contains(item.Roles, role) {
			out = append(out, item)
		}
	}
	return out
}
