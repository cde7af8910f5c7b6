package server

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"

	"aulaplan/internal/config"
	"aulaplan/internal/export"
	"aulaplan/internal/logger"
	"aulaplan/internal/planning"
	"aulaplan/internal/wizard"

	"github.com/gin-gonic/gin"
)

var pdfMagic = []byte("%PDF")

type Handler struct {
	svc       *wizard.Service
	log       *logger.Logger
	maxUpload int64
}

func NewHandler(svc *wizard.Service, log *logger.Logger, maxUpload int64) *Handler {
	if log == nil {
		log = logger.Nop()
	}
	if maxUpload <= 0 {
		maxUpload = int64(config.DefaultMaxUploadMB) << 20
	}
	return &Handler{
		svc:       svc,
		log:       log.With("component", "http"),
		maxUpload: maxUpload,
	}
}

func (h *Handler) Health(c *gin.Context) {
	c.String(http.StatusOK, "ok")
}

// UploadCurriculum accepts a multipart "file" holding the curriculum PDF and
// answers with the analysis and a prefilled teacher context.
func (h *Handler) UploadCurriculum(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload)
	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			RespondError(c, http.StatusRequestEntityTooLarge, "upload_too_large", err)
			return
		}
		RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_multipart_form", err)
		return
	}
	if len(data) > 0 && !bytes.HasPrefix(data, pdfMagic) {
		RespondError(c, http.StatusBadRequest, "invalid_pdf", fmt.Errorf("%s is not a PDF file", fh.Filename))
		return
	}

	res, err := h.svc.Upload(c.Request.Context(), fh.Filename, data)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) GetCurriculum(c *gin.Context) {
	cur, err := h.svc.Curriculum(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondOK(c, cur)
}

// AnalyzeCurriculum re-runs the analysis of a stored curriculum.
func (h *Handler) AnalyzeCurriculum(c *gin.Context) {
	res, err := h.svc.Analyze(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondOK(c, res)
}

type createDocumentRequest struct {
	CurriculumID string                  `json:"curriculum_id"`
	DocType      string                  `json:"doc_type"`
	Context      planning.TeacherContext `json:"context"`
}

func (h *Handler) CreateDocument(c *gin.Context) {
	req := createDocumentRequest{Context: planning.DefaultContext()}
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if req.CurriculumID == "" {
		RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("curriculum_id is required"))
		return
	}
	docType, err := planning.ParseDocType(req.DocType)
	if err != nil {
		h.fail(c, err)
		return
	}
	doc, err := h.svc.Generate(c.Request.Context(), req.CurriculumID, req.Context, docType)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *Handler) ListDocuments(c *gin.Context) {
	docs, err := h.svc.Documents(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondOK(c, gin.H{"documents": docs})
}

func (h *Handler) GetDocument(c *gin.Context) {
	doc, err := h.svc.Document(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondOK(c, doc)
}

type saveDocumentRequest struct {
	Markdown *string `json:"markdown"`
}

// SaveDocument replaces the whole markdown, as the raw editor does.
func (h *Handler) SaveDocument(c *gin.Context) {
	var req saveDocumentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	if req.Markdown == nil {
		RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("markdown is required"))
		return
	}
	doc, err := h.svc.SaveMarkdown(c.Request.Context(), c.Param("id"), *req.Markdown)
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondOK(c, doc)
}

type refineRequest struct {
	Instructions string `json:"instructions"`
}

func (h *Handler) RefineDocument(c *gin.Context) {
	var req refineRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	doc, err := h.svc.Refine(c.Request.Context(), c.Param("id"), req.Instructions)
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondOK(c, doc)
}

func (h *Handler) ListRevisions(c *gin.Context) {
	revs, err := h.svc.Revisions(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondOK(c, gin.H{"revisions": revs})
}

func (h *Handler) GetRevision(c *gin.Context) {
	seq, ok := intParam(c, "seq")
	if !ok {
		return
	}
	rev, err := h.svc.Revision(c.Request.Context(), c.Param("id"), seq)
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondOK(c, rev)
}

// DiffDocument compares two revisions. Missing bounds default to the latest
// revision and the one before it.
func (h *Handler) DiffDocument(c *gin.Context) {
	from, ok := intQuery(c, "from")
	if !ok {
		return
	}
	to, ok := intQuery(c, "to")
	if !ok {
		return
	}
	d, err := h.svc.Diff(c.Request.Context(), c.Param("id"), from, to)
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondOK(c, d)
}

func (h *Handler) ExportDocument(c *gin.Context) {
	f, err := export.ParseFormat(c.Query("format"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_format", err)
		return
	}
	dl, err := h.svc.Export(c.Request.Context(), c.Param("id"), f)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": dl.FileName}))
	c.Data(http.StatusOK, dl.ContentType, dl.Body)
}

func intParam(c *gin.Context, name string) (int, bool) {
	n, err := strconv.Atoi(c.Param(name))
	if err != nil || n < 0 {
		RespondError(c, http.StatusBadRequest, "invalid_"+name, fmt.Errorf("%s must be a non-negative integer", name))
		return 0, false
	}
	return n, true
}

func intQuery(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		RespondError(c, http.StatusBadRequest, "invalid_"+name, fmt.Errorf("%s must be a non-negative integer", name))
		return 0, false
	}
	return n, true
}
