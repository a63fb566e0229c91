package auth

import "github.com/jrsteele09/gym-dashboard/users"

// MenuItem is one sidebar entry. An empty Permission is visible to every signed in user.
type MenuItem struct {
	Label      string
	Path       string
	Permission string
}

// DefaultMenu is the dashboard sidebar in display order
var DefaultMenu = []MenuItem{
	{Label: "Dashboard", Path: "/dashboard"},
	{Label: "Members", Path: "/members", Permission: PermViewMembers},
	{Label: "Add Member", Path: "/members/add", Permission: PermEditMembers},
	{Label: "Payments", Path: "/payments", Permission: PermManagePayments},
	{Label: "Attendance", Path: "/attendance", Permission: PermManageAttendance},
	{Label: "Plans", Path: "/plans", Permission: PermManagePlans},
	{Label: "Batches", Path: "/batches", Permission: PermManageBatches},
	{Label: "Expenses", Path: "/expenses", Permission: PermManageExpenses},
	{Label: "Enquiries", Path: "/enquiries", Permission: PermManageEnquiries},
}

// FilterMenu returns the items user may navigate to, keeping their order.
func FilterMenu(user *users.User, items []MenuItem) []MenuItem {
	if user == nil {
		return nil
	}
	visible := make([]MenuItem, 0, len(items))
	for _, item := range items {
		if item.Permission == "" || HasPermission(user, item.Permission) {
			visible = append(visible, item)
		}
	}
	return visible
}

// Menu filters items for the live session.
func (e *Evaluator) Menu(items []MenuItem) []MenuItem {
	return FilterMenu(e.session.User(), items)
}
