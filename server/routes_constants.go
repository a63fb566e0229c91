package server

import "github.com/jrsteele09/gym-dashboard/auth"

// Route path constants
const (
	RouteIndex = "/"

	// Public only
	RouteLogin     = auth.LoginPath
	RouteRegister  = "/register"
	RouteVerifyOTP = "/verify-otp"

	RouteLogout        = "/logout"
	RouteNotAuthorized = auth.NotAuthorizedPath

	// Protected views
	RouteDashboard  = auth.LandingPath
	RouteMembers    = "/members"
	RouteAddMember  = "/members/add"
	RoutePayments   = "/payments"
	RouteAttendance = "/attendance"
	RoutePlans      = "/plans"
	RouteBatches    = "/batches"
	RouteExpenses   = "/expenses"
	RouteEnquiries  = "/enquiries"

	// Authenticated backend access
	RouteAPIProxy       = "/api/{path...}"
	RouteReportDownload = "/reports/download/{type}"

	RouteMetrics = "/metrics"
	RouteStatic  = "/static/{file}"
)
