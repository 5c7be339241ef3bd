package ui

import (
	"bytes"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"formexport/app"
	"formexport/domain/core"
	apperrors "formexport/internal/errors"
	"formexport/internal/report"

	"github.com/gin-gonic/gin"
)

const (
	docxMIME = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
	zipMIME  = "application/zip"
)

// sessionPage is the data of the session template
type sessionPage struct {
	View     app.SessionView
	Preview  template.HTML
	Selected map[string]bool
	Cutoff   int
}

type errorPage struct {
	Status  int
	Code    string
	Message string
	Back    string
}

type configRequest struct {
	FieldIDs  []string `form:"field_ids" json:"field_ids"`
	SelectAll bool     `form:"select_all" json:"select_all"`
}

// wantsJSON reports whether the client prefers JSON over HTML
func wantsJSON(c *gin.Context) bool {
	return c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) == gin.MIMEJSON
}

// statusFor maps pipeline and session errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case core.IsNotFoundError(err):
		return http.StatusNotFound
	case core.IsTransitionError(err), errors.Is(err, core.ErrNothingGenerated):
		return http.StatusConflict
	}
	switch apperrors.GetCode(err) {
	case apperrors.CodeInvalidInput, apperrors.CodeValidationError:
		return http.StatusBadRequest
	case apperrors.CodeSheetNotFound, apperrors.CodeParseError, apperrors.CodeSchemaError, apperrors.CodeEmptyInput:
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func errorCode(err error) string {
	switch {
	case core.IsNotFoundError(err):
		return apperrors.CodeNotFound
	case core.IsTransitionError(err), errors.Is(err, core.ErrNothingGenerated):
		return "INVALID_STATE"
	}
	return apperrors.GetCode(err)
}

func (s *Server) fail(c *gin.Context, back string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] FAILED: %v", c.FullPath(), err)
	}
	if wantsJSON(c) {
		c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": errorCode(err)})
		return
	}
	s.renderTemplate(c, status, "error.html", errorPage{
		Status:  status,
		Code:    errorCode(err),
		Message: err.Error(),
		Back:    back,
	})
	c.Abort()
}

func (s *Server) session(c *gin.Context) (*app.Session, bool) {
	id, err := core.ParseSessionID(c.Param("id"))
	if err != nil {
		s.fail(c, "/", apperrors.InvalidInput(err.Error()))
		return nil, false
	}
	session, err := s.service.Sessions().Get(id)
	if err != nil {
		s.fail(c, "/", err)
		return nil, false
	}
	return session, true
}

func sessionURL(id core.SessionID) string {
	return "/sessions/" + id.String()
}

// respond answers a state change: a redirect to the session page for forms,
// the session view for JSON clients
func (s *Server) respond(c *gin.Context, status int, view app.SessionView) {
	if wantsJSON(c) {
		c.JSON(status, view)
		return
	}
	c.Redirect(http.StatusSeeOther, sessionURL(view.ID))
}

func (s *Server) handleIndex(c *gin.Context) {
	s.renderTemplate(c, http.StatusOK, "index.html", gin.H{"MaxUploadMB": s.options.MaxUploadBytes >> 20})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "sessions": s.service.Sessions().Len()})
}

// readUpload reads the "workbook" form file, enforcing size and extension
func (s *Server) readUpload(c *gin.Context) (string, []byte, error) {
	file, header, err := c.Request.FormFile("workbook")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) || strings.Contains(err.Error(), "request body too large") {
			return "", nil, apperrors.InvalidInput(fmt.Sprintf("upload exceeds the %d MB limit", s.options.MaxUploadBytes>>20))
		}
		return "", nil, apperrors.InvalidInput("no workbook uploaded")
	}
	defer file.Close()

	if header.Size > s.options.MaxUploadBytes {
		return "", nil, apperrors.InvalidInput(fmt.Sprintf("upload exceeds the %d MB limit", s.options.MaxUploadBytes>>20))
	}
	name := filepath.Base(header.Filename)
	if !strings.EqualFold(filepath.Ext(name), ".xlsx") {
		return "", nil, apperrors.InvalidInput("only Excel .xlsx workbooks are accepted")
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		return "", nil, apperrors.InvalidInput(fmt.Sprintf("failed to read upload: %v", err))
	}
	return name, buf.Bytes(), nil
}

func (s *Server) handleCreateSession(c *gin.Context) {
	name, raw, err := s.readUpload(c)
	if err != nil {
		s.fail(c, "/", err)
		return
	}

	session := s.service.StartSession()
	view, err := s.service.Upload(c.Request.Context(), session.ID, name, c.PostForm("base_name"), raw)
	if err != nil {
		_ = s.service.Sessions().Delete(session.ID)
		log.Printf("[handleCreateSession] Upload of %s failed: %v", name, err)
		s.fail(c, "/", err)
		return
	}
	s.respond(c, http.StatusCreated, view)
}

func (s *Server) handleUpload(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	back := sessionURL(session.ID)
	name, raw, err := s.readUpload(c)
	if err != nil {
		s.fail(c, back, err)
		return
	}
	view, err := s.service.Upload(c.Request.Context(), session.ID, name, c.PostForm("base_name"), raw)
	if err != nil {
		s.fail(c, back, err)
		return
	}
	s.respond(c, http.StatusOK, view)
}

func (s *Server) handleGetSession(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	view := session.View()
	if wantsJSON(c) {
		c.JSON(http.StatusOK, view)
		return
	}

	page := sessionPage{View: view, Cutoff: s.service.Options().Cutoff, Selected: map[string]bool{}}
	for _, id := range view.SelectedFields() {
		page.Selected[id] = true
	}
	if view.Report != nil {
		preview := report.Preview{
			Source:    view.Source,
			Normalize: *view.Report,
			Scan:      view.Scan,
			Cutoff:    page.Cutoff,
		}
		// raw HTML in the markdown is dropped by report.ToHTML
		page.Preview = template.HTML(preview.HTML())
	}
	s.renderTemplate(c, http.StatusOK, "session.html", page)
}

func (s *Server) handleConfigure(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	var req configRequest
	if err := c.ShouldBind(&req); err != nil {
		s.fail(c, sessionURL(session.ID), apperrors.InvalidInput(err.Error()))
		return
	}
	view, err := s.service.Configure(session.ID, req.FieldIDs, req.SelectAll)
	if err != nil {
		s.fail(c, sessionURL(session.ID), err)
		return
	}
	s.respond(c, http.StatusOK, view)
}

func (s *Server) handleGenerate(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	view, err := s.service.GenerateSession(c.Request.Context(), session.ID)
	if err != nil {
		s.fail(c, sessionURL(session.ID), err)
		return
	}
	s.respond(c, http.StatusOK, view)
}

func attachment(c *gin.Context, name, contentType string, data []byte) {
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	c.Data(http.StatusOK, contentType, data)
}

func (s *Server) handleDownloadFile(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	doc, err := session.Document(c.Param("name"))
	if err != nil {
		s.fail(c, sessionURL(session.ID), err)
		return
	}
	contentType := docxMIME
	if !strings.HasSuffix(doc.Filename, ".docx") {
		contentType = "application/octet-stream"
	}
	attachment(c, doc.Filename, contentType, doc.Content)
}

func (s *Server) handleDownloadArchive(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	name, data, err := session.Archive()
	if err != nil {
		s.fail(c, sessionURL(session.ID), err)
		return
	}
	attachment(c, name, zipMIME, data)
}

func (s *Server) handleReset(c *gin.Context) {
	session, ok := s.session(c)
	if !ok {
		return
	}
	view, err := s.service.ResetSession(session.ID)
	if err != nil {
		s.fail(c, "/", err)
		return
	}
	s.respond(c, http.StatusOK, view)
}
