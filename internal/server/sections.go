package server

import (
	"net/http"

	"aulaplan/internal/sda"
	"aulaplan/internal/wizard"

	"github.com/gin-gonic/gin"
)

// Section ids are splitter ids of the document as currently stored.

func (h *Handler) ListSections(c *gin.Context) {
	sections, err := h.svc.Sections(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondOK(c, gin.H{"sections": sections})
}

func (h *Handler) UpdateSection(c *gin.Context) {
	sid, ok := intParam(c, "sid")
	if !ok {
		return
	}
	var patch wizard.SectionPatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	view, err := h.svc.UpdateSection(c.Request.Context(), c.Param("id"), sid, patch)
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondOK(c, view)
}

func (h *Handler) GetRecord(c *gin.Context) {
	sid, ok := intParam(c, "sid")
	if !ok {
		return
	}
	rec, err := h.svc.Record(c.Request.Context(), c.Param("id"), sid)
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondOK(c, rec)
}

func (h *Handler) UpdateRecord(c *gin.Context) {
	sid, ok := intParam(c, "sid")
	if !ok {
		return
	}
	var rec sda.SAStructure
	if err := c.ShouldBindJSON(&rec); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_json", err)
		return
	}
	out, err := h.svc.UpdateRecord(c.Request.Context(), c.Param("id"), sid, rec)
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondOK(c, out)
}

func (h *Handler) AddActivity(c *gin.Context) {
	sid, ok := intParam(c, "sid")
	if !ok {
		return
	}
	rec, err := h.svc.AddActivity(c.Request.Context(), c.Param("id"), sid)
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondOK(c, rec)
}

// RemoveActivity deletes one activity row. Deleting the only row answers
// with the unchanged record.
func (h *Handler) RemoveActivity(c *gin.Context) {
	sid, ok := intParam(c, "sid")
	if !ok {
		return
	}
	index, ok := intParam(c, "index")
	if !ok {
		return
	}
	rec, err := h.svc.RemoveActivity(c.Request.Context(), c.Param("id"), sid, index)
	if err != nil {
		h.fail(c, err)
		return
	}
	RespondOK(c, rec)
}
