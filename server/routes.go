package server

import (
	"net/http"
	"strings"

	"github.com/jrsteele09/gym-dashboard/auth"
	"github.com/jrsteele09/gym-dashboard/internal/obs"
	"github.com/rs/zerolog/log"
)

func (s *Server) initRoutes() {
	s.RegisterRouteFunc("GET "+RouteIndex+"{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))

	// Public only
	s.RegisterRouteFunc("GET "+RouteLogin, ChainMiddleware(s.LoginPageHandler(), s.HTMLMiddleWare(s.PublicOnly())...))
	s.RegisterRouteFunc("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare(s.PublicOnly())...))
	s.RegisterRouteFunc("GET "+RouteRegister, ChainMiddleware(s.RegisterPageHandler(), s.HTMLMiddleWare(s.PublicOnly())...))
	s.RegisterRouteFunc("POST "+RouteRegister, ChainMiddleware(s.RegisterSubmissionHandler(), s.HTMLMiddleWare(s.PublicOnly())...))
	s.RegisterRouteFunc("GET "+RouteVerifyOTP, ChainMiddleware(s.VerifyOTPPageHandler(), s.HTMLMiddleWare(s.PublicOnly())...))
	s.RegisterRouteFunc("POST "+RouteVerifyOTP, ChainMiddleware(s.VerifyOTPSubmissionHandler(), s.HTMLMiddleWare(s.PublicOnly())...))

	s.RegisterRouteFunc("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteFunc("GET "+RouteNotAuthorized, ChainMiddleware(s.NotAuthorizedHandler(), s.HTMLMiddleWare(s.RequireSession(""))...))

	// Protected views
	s.RegisterRouteFunc("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleWare(s.RequireSession(""))...))
	for _, view := range resourceViews {
		s.RegisterRouteFunc("GET "+view.Path, ChainMiddleware(s.ResourceHandler(view), s.HTMLMiddleWare(s.RequireSession(view.Permission))...))
	}
	s.RegisterRouteFunc("GET "+RouteAddMember, ChainMiddleware(s.AddMemberPageHandler(), s.HTMLMiddleWare(s.RequireSession(auth.PermEditMembers))...))
	s.RegisterRouteFunc("POST "+RouteAddMember, ChainMiddleware(s.AddMemberSubmissionHandler(), s.HTMLMiddleWare(s.RequireSession(auth.PermEditMembers))...))

	// Backend access
	s.RegisterRouteFunc(RouteAPIProxy, ChainMiddleware(s.APIProxyHandler(), s.APIMiddleware(s.RequireAPISession())...))
	s.RegisterRouteFunc("GET "+RouteReportDownload, ChainMiddleware(s.ReportDownloadHandler(), s.HTMLMiddleWare(s.RequireSession(auth.PermViewReports))...))

	s.RegisterRouteHandler("GET "+RouteMetrics, obs.Handler())
	s.RegisterRouteFunc("GET "+RouteStatic, ChainMiddleware(s.serveFileHandler(), s.HTMLMiddleWare()...))
}

func (s *Server) serveFileHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filePath := strings.TrimPrefix(r.PathValue("file"), "/")
		if filePath == "" {
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
			return
		}
		if err := StreamFile(w, r, filePath); err != nil {
			log.Warn().Err(err).Str("file", filePath).Msg("static file not served")
			http.Error(w, "404 - Page Not Found", http.StatusNotFound)
		}
	}
}
