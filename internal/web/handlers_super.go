package web

import (
	"net/http"
	"strconv"

	"github.com/a-h/templ"
	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/ecole-console/internal/api"
	mw "github.com/JonMunkholm/ecole-console/internal/web/middleware"
	"github.com/JonMunkholm/ecole-console/internal/web/views"
)

const schoolsPath = "/super/schools"

func (s *Server) handleSuperDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.backend.PlatformStats(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	s.render(w, r, http.StatusOK, "Dashboard", "/super/dashboard", views.StatCards([]views.Stat{
		{Label: "Schools", Value: strconv.Itoa(stats.Schools)},
		{Label: "Students", Value: strconv.Itoa(stats.Students)},
		{Label: "Active subscriptions", Value: strconv.Itoa(stats.ActiveSubscriptions)},
		{Label: "Pending contacts", Value: strconv.Itoa(stats.PendingContacts)},
		{Label: "Monthly revenue", Value: formatMoney(stats.MonthlyRevenueCents, "EUR")},
	}))
}

func schoolFields(f schoolForm) []views.Field {
	return []views.Field{
		{Name: "name", Label: "Name", Value: f.Name, Required: true},
		{Name: "email", Label: "Email", Type: "email", Value: f.Email, Required: true},
		{Name: "address", Label: "Address", Value: f.Address},
		{Name: "city", Label: "City", Value: f.City},
		{Name: "phone", Label: "Phone", Value: f.Phone},
		{Name: "active", Label: "Active", Type: "checkbox", Checked: f.Active},
	}
}

func schoolRows(schools []api.School) []views.Row {
	rows := make([]views.Row, 0, len(schools))
	for _, sc := range schools {
		rows = append(rows, views.Row{
			Cells: []string{sc.Name, sc.City, sc.Email, sc.Phone, yesNo(sc.Active), formatDate(sc.CreatedAt)},
			Actions: []views.Action{
				{Label: "Edit", Href: schoolsPath + "/" + sc.ID},
				{Label: "Delete", Href: schoolsPath + "/" + sc.ID + "/delete", Post: true, Confirm: "Delete " + sc.Name + "?"},
			},
		})
	}
	return rows
}

// schoolsPage renders the list with the create form. form and errs are
// kept when a submission failed validation.
func (s *Server) schoolsPage(w http.ResponseWriter, r *http.Request, status int, form schoolForm, errs map[string]string) {
	if errs != nil && mw.WantsJSON(r) {
		writeValidationErrors(w, errs)
		return
	}
	search := r.URL.Query().Get("q")
	schools, err := s.backend.ListSchools(r.Context(), search)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if mw.WantsJSON(r) {
		writeJSON(w, schools)
		return
	}

	s.render(w, r, status, "Schools", schoolsPath, views.Group(
		views.SearchForm(schoolsPath, "q", search, "Search by name or city"),
		views.Table([]string{"Name", "City", "Email", "Phone", "Active", "Created"}, schoolRows(schools), "No schools found"),
		views.Form(views.FormSpec{
			Title:  "New school",
			Action: schoolsPath,
			Submit: "Create",
			Fields: schoolFields(form),
			Errors: errs,
		}),
	))
}

func (s *Server) handleSchools(w http.ResponseWriter, r *http.Request) {
	s.schoolsPage(w, r, http.StatusOK, schoolForm{Active: true}, nil)
}

func (s *Server) handleCreateSchool(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	form := decodeSchool(r)
	if errs := s.forms.Check(form); errs != nil {
		s.schoolsPage(w, r, http.StatusUnprocessableEntity, form, errs)
		return
	}

	created, err := s.backend.CreateSchool(r.Context(), form.toAPI())
	if err != nil {
		s.mutationFailed(w, r, schoolsPath, "create school", err)
		return
	}
	s.redirectWithFlash(w, r, schoolsPath, flashSuccess, "School "+created.Name+" created")
}

func (s *Server) schoolEditPage(w http.ResponseWriter, r *http.Request, status int, id string, form schoolForm, errs map[string]string) {
	if errs != nil && mw.WantsJSON(r) {
		writeValidationErrors(w, errs)
		return
	}
	s.render(w, r, status, "Edit school", schoolsPath, editView(schoolsPath, views.FormSpec{
		Action: schoolsPath + "/" + id,
		Submit: "Save",
		Fields: schoolFields(form),
		Errors: errs,
	}))
}

func (s *Server) handleEditSchool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	school, err := s.backend.GetSchool(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.schoolEditPage(w, r, http.StatusOK, id, schoolFormFrom(*school), nil)
}

func (s *Server) handleUpdateSchool(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	form := decodeSchool(r)
	if errs := s.forms.Check(form); errs != nil {
		s.schoolEditPage(w, r, http.StatusUnprocessableEntity, id, form, errs)
		return
	}

	if _, err := s.backend.UpdateSchool(r.Context(), id, form.toAPI()); err != nil {
		s.mutationFailed(w, r, schoolsPath, "update school", err)
		return
	}
	s.redirectWithFlash(w, r, schoolsPath, flashSuccess, "School "+form.Name+" updated")
}

func (s *Server) handleDeleteSchool(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteSchool(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.mutationFailed(w, r, schoolsPath, "delete school", err)
		return
	}
	s.redirectWithFlash(w, r, schoolsPath, flashSuccess, "School deleted")
}

const contactsPath = "/super/contacts"

func (s *Server) handleContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := s.backend.ListContacts(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if mw.WantsJSON(r) {
		writeJSON(w, contacts)
		return
	}

	rows := make([]views.Row, 0, len(contacts))
	for _, c := range contacts {
		rows = append(rows, views.Row{
			Cells: []string{formatDateTime(c.CreatedAt), c.Name, c.Email, c.Subject, c.Message},
			Actions: []views.Action{
				{Label: "Delete", Href: contactsPath + "/" + c.ID + "/delete", Post: true, Confirm: "Delete this message?"},
			},
		})
	}
	s.render(w, r, http.StatusOK, "Contacts", contactsPath,
		views.Table([]string{"Received", "Name", "Email", "Subject", "Message"}, rows, "No messages"))
}

func (s *Server) handleDeleteContact(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteContact(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.mutationFailed(w, r, contactsPath, "delete message", err)
		return
	}
	s.redirectWithFlash(w, r, contactsPath, flashSuccess, "Message deleted")
}

func (s *Server) handleSubscriptions(w http.ResponseWriter, r *http.Request) {
	subs, err := s.backend.ListSubscriptions(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if mw.WantsJSON(r) {
		writeJSON(w, subs)
		return
	}

	rows := make([]views.Row, 0, len(subs))
	for _, sub := range subs {
		school := sub.SchoolName
		if school == "" {
			school = sub.SchoolID
		}
		rows = append(rows, views.Row{Cells: []string{
			school, sub.PlanName, sub.Status, formatMoney(sub.AmountCents, sub.Currency), formatDate(sub.CurrentPeriodEnd),
		}})
	}
	s.render(w, r, http.StatusOK, "Subscriptions", "/super/subscriptions",
		views.Table([]string{"School", "Plan", "Status", "Amount", "Period end"}, rows, "No subscriptions"))
}

// editView renders an edit form with a way back to the list.
func editView(back string, spec views.FormSpec) templ.Component {
	return views.Group(views.Form(spec), views.Link(back, "Back to the list"))
}
