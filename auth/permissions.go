package auth

import (
	"slices"

	"github.com/jrsteele09/gym-dashboard/users"
)

// Permissions checked by the dashboard routes and menu
const (
	PermViewMembers      = "view_members"
	PermEditMembers      = "edit_members"
	PermManagePayments   = "manage_payments"
	PermManageAttendance = "manage_attendance"
	PermManagePlans      = "manage_plans"
	PermManageBatches    = "manage_batches"
	PermViewReports      = "view_reports"
	PermManageExpenses   = "manage_expenses"
	PermManageEnquiries  = "manage_enquiries"
)

// HasPermission reports whether user holds capability. Admins hold every capability,
// staff hold exactly the ones listed on their staff profile and everyone else holds none.
func HasPermission(user *users.User, capability string) bool {
	switch {
	case user.IsAdmin():
		return true
	case user.IsStaff():
		return slices.Contains(user.StaffPermissions(), capability)
	default:
		return false
	}
}

// UserSource returns the current user, or nil when logged out
type UserSource interface {
	User() *users.User
}

// Evaluator checks capabilities against the live session on every call.
type Evaluator struct {
	session UserSource
}

func NewEvaluator(session UserSource) *Evaluator {
	return &Evaluator{session: session}
}

func (e *Evaluator) HasPermission(capability string) bool {
	return HasPermission(e.session.User(), capability)
}
