package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/jrsteele09/gym-dashboard/auth"
	"github.com/jrsteele09/gym-dashboard/gateway"
	"github.com/jrsteele09/gym-dashboard/internal/config"
	"github.com/jrsteele09/gym-dashboard/notice"
	"github.com/jrsteele09/gym-dashboard/sessions"
	"github.com/rs/zerolog/log"
)

const (
	gray       = "\033[90m"
	resetColor = "\033[0m"
)

var methodColors = map[string]string{
	"GET":    "\033[32m",
	"POST":   "\033[34m",
	"PUT":    "\033[36m",
	"DELETE": "\033[33m",
	"PATCH":  "\033[35m",
}

// Server serves the dashboard pages and the authenticated API proxy for the single
// operator session held by the session manager.
type Server struct {
	env       string
	mux       *http.ServeMux
	routes    []string
	config    config.Config
	sessions  *sessions.Manager
	guard     *auth.Guard
	evaluator *auth.Evaluator
	gateway   *gateway.Client
	notices   *notice.Recorder
	pages     *pages
}

func New(cfg config.Config, manager *sessions.Manager, gw *gateway.Client, notices *notice.Recorder) (*Server, error) {
	pages, err := parsePages()
	if err != nil {
		return nil, fmt.Errorf("[Server New] failed to parse templates: %w", err)
	}

	s := &Server{
		env:       cfg.GetEnv(),
		mux:       http.NewServeMux(),
		config:    cfg,
		sessions:  manager,
		guard:     auth.NewGuard(manager),
		evaluator: auth.NewEvaluator(manager),
		gateway:   gw,
		notices:   notices,
		pages:     pages,
	}

	s.initRoutes()
	s.logRoutes()

	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteHandler(pattern string, handler http.Handler) {
	s.routes = append(s.routes, pattern)
	s.mux.Handle(pattern, handler)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		parts := strings.SplitN(route, " ", 2)

		if len(parts) > 1 {
			logRoute(parts[0], parts[1])
		} else {
			logRoute("", parts[0])
		}
	}
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	color, ok := methodColors[method]
	if !ok {
		color = gray
	}
	log.Debug().Msgf("[%s] %s", color+paddedMethod+resetColor, path)
}
