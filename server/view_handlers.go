package server

import (
	"encoding/json"
	"fmt"
	"html/template"
	"maps"
	"net/http"
	"slices"
	"strings"

	"github.com/jrsteele09/gym-dashboard/auth"
	"github.com/jrsteele09/gym-dashboard/gateway"
	"github.com/jrsteele09/gym-dashboard/notice"
	"github.com/jrsteele09/gym-dashboard/users"
)

// layoutData is the model for every page rendered inside the authenticated layout
type layoutData struct {
	AppName    string
	Title      string
	User       *users.User
	GymName    string
	Currency   string
	Menu       []auth.MenuItem
	ActivePath string
	Notices    []notice.Notice
	Content    any
}

// resourceView is a protected list page backed by one backend collection
type resourceView struct {
	Path       string
	Title      string
	Endpoint   string
	Key        string
	Permission string
	Reports    []string
}

var resourceViews = []resourceView{
	{Path: RouteMembers, Title: "Members", Endpoint: "/members", Key: "members", Permission: auth.PermViewMembers, Reports: []string{"all", "active"}},
	{Path: RoutePayments, Title: "Payments", Endpoint: "/payments", Key: "payments", Permission: auth.PermManagePayments},
	{Path: RouteAttendance, Title: "Attendance", Endpoint: "/attendance", Key: "attendance", Permission: auth.PermManageAttendance},
	{Path: RoutePlans, Title: "Plans", Endpoint: "/plans", Key: "plans", Permission: auth.PermManagePlans},
	{Path: RouteBatches, Title: "Batches", Endpoint: "/batches", Key: "batches", Permission: auth.PermManageBatches},
	{Path: RouteExpenses, Title: "Expenses", Endpoint: "/expenses", Key: "expenses", Permission: auth.PermManageExpenses},
	{Path: RouteEnquiries, Title: "Enquiries", Endpoint: "/enquiries", Key: "enquiries", Permission: auth.PermManageEnquiries},
}

type resourceTable struct {
	Columns []string
	Rows    [][]string
	Reports []string
}

type option struct {
	ID   string
	Name string
}

type memberForm struct {
	Plans   []option
	Batches []option
}

// memberFields are the add member form fields sent to the backend
var memberFields = []string{"name", "email", "phone", "plan_id", "batch_id"}

// renderLayout renders a page inside the authenticated layout. A session that ended
// since the guard ran is sent to the login page.
func (s *Server) renderLayout(w http.ResponseWriter, r *http.Request, page *template.Template, title string, content any) {
	user := s.sessions.User()
	if user == nil {
		redirectSuccess(w, r, RouteLogin)
		return
	}

	render(w, page, http.StatusOK, layoutData{
		AppName:    s.config.GetAppName(),
		Title:      title,
		User:       user,
		GymName:    user.DisplayGymName(),
		Currency:   s.sessions.GetCurrencySymbol(),
		Menu:       s.evaluator.Menu(auth.DefaultMenu),
		ActivePath: r.URL.Path,
		Notices:    s.notices.Drain(),
		Content:    content,
	})
}

// DashboardHandler renders the landing page
func (s *Server) DashboardHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderLayout(w, r, s.pages.dashboard, "Dashboard", nil)
	}
}

// NotAuthorizedHandler renders the page users land on when they lack a permission
func (s *Server) NotAuthorizedHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.renderLayout(w, r, s.pages.notAuthorized, "Not Authorized", nil)
	}
}

// ResourceHandler lists one backend collection as a table
func (s *Server) ResourceHandler(view resourceView) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		records, ok := s.fetchRecords(w, r, view.Endpoint, view.Key)
		if !ok {
			return
		}

		table := buildTable(records)
		if len(view.Reports) > 0 && s.evaluator.HasPermission(auth.PermViewReports) {
			table.Reports = view.Reports
		}
		s.renderLayout(w, r, s.pages.resource, view.Title, table)
	}
}

// AddMemberPageHandler renders the add member form with the plan and batch choices
func (s *Server) AddMemberPageHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		plans, ok := s.fetchRecords(w, r, "/plans", "plans")
		if !ok {
			return
		}
		batches, ok := s.fetchRecords(w, r, "/batches", "batches")
		if !ok {
			return
		}

		form := memberForm{Plans: options(plans), Batches: options(batches)}
		s.renderLayout(w, r, s.pages.memberForm, "Add Member", form)
	}
}

// AddMemberSubmissionHandler creates a member through the backend
func (s *Server) AddMemberSubmissionHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		member := make(map[string]string, len(memberFields))
		for _, field := range memberFields {
			if value := strings.TrimSpace(r.FormValue(field)); value != "" {
				member[field] = value
			}
		}
		body, err := json.Marshal(member)
		if err != nil {
			http.Error(w, "Invalid form data", http.StatusBadRequest)
			return
		}

		resp, err := s.gateway.Call(r.Context(), "/members", &gateway.RequestOptions{Method: http.MethodPost, Body: body})
		switch {
		case err != nil:
			redirectSuccess(w, r, RouteAddMember)
		case resp == nil:
			redirectSuccess(w, r, RouteLogin)
		default:
			s.notices.Notify(notice.Notice{Title: "Success", Description: "Member added successfully"})
			redirectSuccess(w, r, RouteMembers)
		}
	}
}

// fetchRecords loads a collection through the gateway. It returns false after answering
// the request itself, which only happens when the session expired.
func (s *Server) fetchRecords(w http.ResponseWriter, r *http.Request, endpoint, key string) ([]gateway.Record, bool) {
	resp, err := s.gateway.Call(r.Context(), endpoint, nil)
	if err != nil {
		// the gateway already raised a notice
		return nil, true
	}
	if resp == nil {
		redirectSuccess(w, r, RouteLogin)
		return nil, false
	}

	records, err := gateway.Records(resp.Body, key)
	if err != nil {
		s.notices.Notify(notice.Error(fmt.Sprintf("Failed to load %s", key)))
		return nil, true
	}
	return records, true
}

func buildTable(records []gateway.Record) resourceTable {
	columnSet := make(map[string]struct{})
	for _, record := range records {
		for key := range record {
			columnSet[key] = struct{}{}
		}
	}
	columns := slices.Sorted(maps.Keys(columnSet))

	rows := make([][]string, 0, len(records))
	for _, record := range records {
		row := make([]string, len(columns))
		for i, column := range columns {
			row[i] = cellText(record[column])
		}
		rows = append(rows, row)
	}
	return resourceTable{Columns: columns, Rows: rows}
}

func cellText(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case map[string]any, []any:
		raw, _ := json.Marshal(v)
		return string(raw)
	default:
		return fmt.Sprint(v)
	}
}

func options(records []gateway.Record) []option {
	opts := make([]option, 0, len(records))
	for _, record := range records {
		id := cellText(record["id"])
		if id == "" {
			id = cellText(record["_id"])
		}
		opts = append(opts, option{ID: id, Name: cellText(record["name"])})
	}
	return opts
}
