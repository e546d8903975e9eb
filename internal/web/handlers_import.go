package web

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/JonMunkholm/ecole-console/internal/core"
	"github.com/JonMunkholm/ecole-console/internal/export"
	"github.com/JonMunkholm/ecole-console/internal/logging"
	mw "github.com/JonMunkholm/ecole-console/internal/web/middleware"
	"github.com/JonMunkholm/ecole-console/internal/web/views"
)

// multipartOverhead is the room left for boundaries and part headers on
// top of the file size limit.
const multipartOverhead = 64 << 10

// importLogLimit is how many history lines the import log shows.
const importLogLimit = 50

// handleImport bulk-creates contents from an uploaded CSV or workbook.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			s.importFailed(w, r, core.ErrFileTooLarge)
			return
		}
		s.importFailed(w, r, fmt.Errorf("%w: %v", core.ErrNoFile, err))
		return
	}
	defer func() {
		if r.MultipartForm != nil {
			_ = r.MultipartForm.RemoveAll()
		}
	}()

	file, header, err := r.FormFile("file")
	if err != nil {
		s.importFailed(w, r, core.ErrNoFile)
		return
	}
	defer file.Close()

	ctx := WithRequestMetadata(r.Context(), r)
	result, err := s.imports.ImportContent(ctx, core.ImportRequest{
		SchoolID: currentSession(r).SchoolID,
		FileName: header.Filename,
		Body:     file,
	})
	if err != nil {
		s.importFailed(w, r, err)
		return
	}

	if mw.WantsJSON(r) {
		writeJSON(w, result)
		return
	}
	s.redirectWithFlash(w, r, contentsPath, flashSuccess, importSummary(result))
}

// importFailed answers JSON clients with the mapped error and sends
// browsers back to the catalog with it.
func (s *Server) importFailed(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if mw.WantsJSON(r) || isHTMX(r) || status == http.StatusUnauthorized {
		s.respondError(w, r, err, status)
		return
	}
	logging.FromContext(r.Context()).Warn("import rejected", "status", status, "error", err)
	s.redirectWithFlash(w, r, contentsPath, flashError, "Import failed: "+core.FormatUserError(err))
}

func importSummary(res *core.ImportResult) string {
	msg := fmt.Sprintf("%d content(s) imported from %s", res.Submitted, res.FileName)
	if res.Skipped > 0 {
		msg += fmt.Sprintf(" (%d blank row(s) skipped)", res.Skipped)
	}
	return msg
}

// handleExportContents downloads the catalog as an .xlsx workbook.
func (s *Server) handleExportContents(w http.ResponseWriter, r *http.Request) {
	contents, err := s.backend.ListContents(r.Context())
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	var buf bytes.Buffer
	if err := export.ContentsWorkbook(&buf, contents); err != nil {
		s.respondError(w, r, err, http.StatusInternalServerError)
		return
	}

	filename := "contenus-" + time.Now().Format("2006-01-02") + ".xlsx"
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	_, _ = buf.WriteTo(w)
}

// handleImportLog lists the latest imports of the admin's school.
func (s *Server) handleImportLog(w http.ResponseWriter, r *http.Request) {
	entries, err := s.imports.RecentImports(r.Context(), currentSession(r).SchoolID, importLogLimit)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}
	if mw.WantsJSON(r) {
		if entries == nil {
			entries = []core.ImportEntry{}
		}
		writeJSON(w, entries)
		return
	}

	rows := make([]views.Row, 0, len(entries))
	for _, e := range entries {
		outcome := e.Status
		if e.ErrorCode != "" {
			outcome += " (" + e.ErrorCode + ")"
		}
		rows = append(rows, views.Row{Cells: []string{
			formatDateTime(e.StartedAt),
			e.FileName,
			outcome,
			strconv.Itoa(e.Parsed),
			strconv.Itoa(e.Submitted),
			strconv.Itoa(e.Skipped),
			e.Duration.Round(time.Millisecond).String(),
		}})
	}
	s.render(w, r, http.StatusOK, "Imports", "/admin/contents/import-log",
		views.Table([]string{"Started", "File", "Outcome", "Parsed", "Submitted", "Skipped", "Duration"}, rows, "No imports yet"))
}
