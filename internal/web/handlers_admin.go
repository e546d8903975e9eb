package web

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/ecole-console/internal/api"
	mw "github.com/JonMunkholm/ecole-console/internal/web/middleware"
	"github.com/JonMunkholm/ecole-console/internal/web/views"
)

const (
	studentsPath = "/admin/students"
	contentsPath = "/admin/contents"
)

func (s *Server) handleAdminDashboard(w http.ResponseWriter, r *http.Request) {
	stats, err := s.backend.SchoolStats(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	renews := "-"
	if stats.RenewsAt != nil {
		renews = formatDate(*stats.RenewsAt)
	}
	s.render(w, r, http.StatusOK, "Dashboard", "/admin/dashboard", views.StatCards([]views.Stat{
		{Label: "Students", Value: strconv.Itoa(stats.Students)},
		{Label: "Contents", Value: strconv.Itoa(stats.Contents)},
		{Label: "Subscription", Value: stats.SubscriptionStatus},
		{Label: "Renews on", Value: renews},
	}))
}

// Students

func studentFields(f studentForm) []views.Field {
	return []views.Field{
		{Name: "first_name", Label: "First name", Value: f.FirstName, Required: true},
		{Name: "last_name", Label: "Last name", Value: f.LastName, Required: true},
		{Name: "class", Label: "Class", Value: f.Class, Required: true},
		{Name: "email", Label: "Email", Type: "email", Value: f.Email},
		{Name: "parent_phone", Label: "Parent phone", Value: f.ParentPhone},
	}
}

func (s *Server) studentsPage(w http.ResponseWriter, r *http.Request, status int, form studentForm, errs map[string]string) {
	if errs != nil && mw.WantsJSON(r) {
		writeValidationErrors(w, errs)
		return
	}

	class := r.URL.Query().Get("class")
	students, err := s.backend.ListStudents(r.Context(), class)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if mw.WantsJSON(r) {
		writeJSON(w, students)
		return
	}

	rows := make([]views.Row, 0, len(students))
	for _, st := range students {
		rows = append(rows, views.Row{
			Cells: []string{st.LastName, st.FirstName, st.Class, st.Email, st.ParentPhone},
			Actions: []views.Action{
				{Label: "Edit", Href: studentsPath + "/" + st.ID},
				{Label: "Delete", Href: studentsPath + "/" + st.ID + "/delete", Post: true, Confirm: "Delete " + st.FirstName + " " + st.LastName + "?"},
			},
		})
	}

	s.render(w, r, status, "Students", studentsPath, views.Group(
		views.SearchForm(studentsPath, "class", class, "Filter by class"),
		views.Table([]string{"Last name", "First name", "Class", "Email", "Parent phone"}, rows, "No students yet"),
		views.Form(views.FormSpec{
			Title:  "New student",
			Action: studentsPath,
			Submit: "Create",
			Fields: studentFields(form),
			Errors: errs,
		}),
	))
}

func (s *Server) handleStudents(w http.ResponseWriter, r *http.Request) {
	s.studentsPage(w, r, http.StatusOK, studentForm{}, nil)
}

func (s *Server) handleCreateStudent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	form := decodeStudent(r)
	if errs := s.forms.Check(form); errs != nil {
		s.studentsPage(w, r, http.StatusUnprocessableEntity, form, errs)
		return
	}

	if _, err := s.backend.CreateStudent(r.Context(), form.toAPI()); err != nil {
		s.mutationFailed(w, r, studentsPath, "create student", err)
		return
	}
	s.redirectWithFlash(w, r, studentsPath, flashSuccess, "Student "+form.FirstName+" "+form.LastName+" created")
}

func (s *Server) studentEditPage(w http.ResponseWriter, r *http.Request, status int, id string, form studentForm, errs map[string]string) {
	if errs != nil && mw.WantsJSON(r) {
		writeValidationErrors(w, errs)
		return
	}
	s.render(w, r, status, "Edit student", studentsPath, editView(studentsPath, views.FormSpec{
		Action: studentsPath + "/" + id,
		Submit: "Save",
		Fields: studentFields(form),
		Errors: errs,
	}))
}

func (s *Server) handleEditStudent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	st, err := s.backend.GetStudent(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.studentEditPage(w, r, http.StatusOK, id, studentFormFrom(*st), nil)
}

func (s *Server) handleUpdateStudent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	form := decodeStudent(r)
	if errs := s.forms.Check(form); errs != nil {
		s.studentEditPage(w, r, http.StatusUnprocessableEntity, id, form, errs)
		return
	}

	if _, err := s.backend.UpdateStudent(r.Context(), id, form.toAPI()); err != nil {
		s.mutationFailed(w, r, studentsPath, "update student", err)
		return
	}
	s.redirectWithFlash(w, r, studentsPath, flashSuccess, "Student updated")
}

func (s *Server) handleDeleteStudent(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteStudent(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.mutationFailed(w, r, studentsPath, "delete student", err)
		return
	}
	s.redirectWithFlash(w, r, studentsPath, flashSuccess, "Student deleted")
}

// Contents

func contentFields(f contentForm) []views.Field {
	return []views.Field{
		{Name: "no", Label: "No", Value: f.No},
		{Name: "titre", Label: "Titre", Value: f.Titre, Required: true},
		{Name: "auteur", Label: "Auteur", Value: f.Auteur},
		{Name: "description", Label: "Description", Type: "textarea", Value: f.Description},
	}
}

func contentRows(contents []api.Content) []views.Row {
	rows := make([]views.Row, 0, len(contents))
	for _, c := range contents {
		rows = append(rows, views.Row{
			Cells: []string{c.No, c.Titre, c.Auteur, c.Description},
			Actions: []views.Action{
				{Label: "Edit", Href: contentsPath + "/" + c.ID},
				{Label: "Delete", Href: contentsPath + "/" + c.ID + "/delete", Post: true, Confirm: "Delete this content?"},
			},
		})
	}
	return rows
}

// importForm is the upload box above the catalog.
func importForm() views.FormSpec {
	return views.FormSpec{
		Title:     "Import a file",
		Action:    contentsPath + "/import",
		Submit:    "Import",
		Multipart: true,
		Fields: []views.Field{
			{Name: "file", Label: "CSV or Excel file (No, Titre, Auteur, Description)", Type: "file", Accept: ".csv,.txt,.xlsx", Required: true},
		},
	}
}

func (s *Server) contentsPage(w http.ResponseWriter, r *http.Request, status int, form contentForm, errs map[string]string) {
	if errs != nil && mw.WantsJSON(r) {
		writeValidationErrors(w, errs)
		return
	}

	contents, err := s.backend.ListContents(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if mw.WantsJSON(r) {
		writeJSON(w, contents)
		return
	}

	s.render(w, r, status, "Contents", contentsPath, views.Group(
		views.Form(importForm()),
		views.Link(contentsPath+"/export.xlsx", "Download as Excel"),
		views.Table([]string{"No", "Titre", "Auteur", "Description"}, contentRows(contents), "No contents yet"),
		views.Form(views.FormSpec{
			Title:  "New content",
			Action: contentsPath,
			Submit: "Create",
			Fields: contentFields(form),
			Errors: errs,
		}),
	))
}

func (s *Server) handleContents(w http.ResponseWriter, r *http.Request) {
	s.contentsPage(w, r, http.StatusOK, contentForm{}, nil)
}

func (s *Server) handleCreateContent(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	form := decodeContent(r)
	if errs := s.forms.Check(form); errs != nil {
		s.contentsPage(w, r, http.StatusUnprocessableEntity, form, errs)
		return
	}

	if _, err := s.backend.CreateContent(r.Context(), form.toAPI()); err != nil {
		s.mutationFailed(w, r, contentsPath, "create content", err)
		return
	}
	s.redirectWithFlash(w, r, contentsPath, flashSuccess, "Content "+form.Titre+" created")
}

func (s *Server) contentEditPage(w http.ResponseWriter, r *http.Request, status int, id string, form contentForm, errs map[string]string) {
	if errs != nil && mw.WantsJSON(r) {
		writeValidationErrors(w, errs)
		return
	}
	s.render(w, r, status, "Edit content", contentsPath, editView(contentsPath, views.FormSpec{
		Action: contentsPath + "/" + id,
		Submit: "Save",
		Fields: contentFields(form),
		Errors: errs,
	}))
}

func (s *Server) handleEditContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := s.backend.GetContent(r.Context(), id)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	s.contentEditPage(w, r, http.StatusOK, id, contentFormFrom(*c), nil)
}

func (s *Server) handleUpdateContent(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := r.ParseForm(); err != nil {
		s.respondError(w, r, err, http.StatusBadRequest)
		return
	}
	form := decodeContent(r)
	if errs := s.forms.Check(form); errs != nil {
		s.contentEditPage(w, r, http.StatusUnprocessableEntity, id, form, errs)
		return
	}

	if _, err := s.backend.UpdateContent(r.Context(), id, form.toAPI()); err != nil {
		s.mutationFailed(w, r, contentsPath, "update content", err)
		return
	}
	s.redirectWithFlash(w, r, contentsPath, flashSuccess, "Content updated")
}

func (s *Server) handleDeleteContent(w http.ResponseWriter, r *http.Request) {
	if err := s.backend.DeleteContent(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.mutationFailed(w, r, contentsPath, "delete content", err)
		return
	}
	s.redirectWithFlash(w, r, contentsPath, flashSuccess, "Content deleted")
}

// Subscription

func (s *Server) handleSubscription(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	current, err := s.backend.CurrentSubscription(ctx)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	invoices, err := s.backend.ListInvoices(ctx)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	plans, err := s.backend.ListPlans(ctx)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	if mw.WantsJSON(r) {
		writeJSON(w, map[string]any{"current": current, "invoices": invoices, "plans": plans})
		return
	}

	summary := views.Text("No active subscription")
	if current != nil {
		summary = views.StatCards([]views.Stat{
			{Label: "Plan", Value: current.PlanName},
			{Label: "Status", Value: current.Status},
			{Label: "Amount", Value: formatMoney(current.AmountCents, current.Currency)},
			{Label: "Period end", Value: formatDate(current.CurrentPeriodEnd)},
		})
	}

	invoiceRows := make([]views.Row, 0, len(invoices))
	for _, inv := range invoices {
		paid := ""
		if inv.PaidAt != nil {
			paid = formatDate(*inv.PaidAt)
		}
		invoiceRows = append(invoiceRows, views.Row{Cells: []string{
			inv.Number, formatDate(inv.IssuedAt), formatMoney(inv.AmountCents, inv.Currency), inv.Status, paid,
		}})
	}

	planRows := make([]views.Row, 0, len(plans))
	for _, p := range plans {
		planRows = append(planRows, views.Row{Cells: []string{
			p.Name, formatMoney(p.PriceCents, p.Currency), p.Interval,
		}})
	}

	s.render(w, r, http.StatusOK, "Subscription", "/admin/subscription", views.Group(
		views.Section("Current plan", summary),
		views.Section("Invoices", views.Table([]string{"Number", "Issued", "Amount", "Status", "Paid"}, invoiceRows, "No invoices")),
		views.Section("Available plans", views.Table([]string{"Plan", "Price", "Billing"}, planRows, "No plans available")),
	))
}
