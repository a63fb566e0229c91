package server

import (
	"fmt"
	"io"
	"net/http"
	"regexp"

	"github.com/jrsteele09/gym-dashboard/gateway"
	"github.com/jrsteele09/gym-dashboard/internal/errors"
	"github.com/rs/zerolog/log"
)

// maxProxyBody caps the request body forwarded to the backend
const maxProxyBody = 1 << 20

var reportTypePattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,31}$`)

// APIProxyHandler forwards /api/{path...} to the backend with the session's bearer token.
// A call that ended the session answers 401 so the browser goes back to the login page.
func (s *Server) APIProxyHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		body, err := io.ReadAll(io.LimitReader(r.Body, maxProxyBody))
		if err != nil {
			writeJSONMessage(w, http.StatusBadRequest, "Invalid request body")
			return
		}

		endpoint := "/" + r.PathValue("path")
		if r.URL.RawQuery != "" {
			endpoint += "?" + r.URL.RawQuery
		}

		opts := &gateway.RequestOptions{Method: r.Method}
		if len(body) > 0 {
			opts.Body = body
		}
		if contentType := r.Header.Get("Content-Type"); contentType != "" {
			opts.Headers = map[string]string{"Content-Type": contentType}
		}

		resp, err := s.gateway.Call(r.Context(), endpoint, opts)
		if err != nil {
			var apiErr *errors.APIError
			if errors.As(err, &apiErr) {
				writeJSONMessage(w, apiErr.Status, apiErr.Message)
				return
			}
			if errors.Is(err, errors.ErrSessionExpired) {
				writeJSONMessage(w, http.StatusUnauthorized, "Please retry the request.")
				return
			}
			writeJSONMessage(w, http.StatusBadGateway, err.Error())
			return
		}
		if resp == nil {
			writeJSONMessage(w, http.StatusUnauthorized, "Please login again.")
			return
		}

		w.Header().Set("Content-Type", contentTypeJSON)
		w.WriteHeader(resp.Status)
		if _, err := w.Write(resp.Body); err != nil {
			log.Err(err).Str("endpoint", endpoint).Msg("Failed to write proxied response")
		}
	}
}

// ReportDownloadHandler streams a CSV member report as an attachment.
func (s *Server) ReportDownloadHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reportType := r.PathValue("type")
		if !reportTypePattern.MatchString(reportType) {
			http.Error(w, "Unknown report type", http.StatusBadRequest)
			return
		}

		resp, err := s.gateway.Download(r.Context(), "/reports/download/"+reportType)
		if err != nil {
			redirectSuccess(w, r, RouteMembers)
			return
		}
		if resp == nil {
			redirectSuccess(w, r, RouteLogin)
			return
		}

		contentType := resp.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "text/csv"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s_members_report.csv"`, reportType))
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(resp.Body); err != nil {
			log.Err(err).Str("report", reportType).Msg("Failed to write report")
		}
	}
}
