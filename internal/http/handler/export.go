package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"basegraph.app/cadence/internal/service"
)

type ExportHandler struct {
	exports service.ExportService
}

func NewExportHandler(exports service.ExportService) *ExportHandler {
	return &ExportHandler{exports: exports}
}

func (h *ExportHandler) Markdown(c *gin.Context) {
	planID, ok := pathID(c, "id")
	if !ok {
		return
	}

	out, err := h.exports.RenderMarkdown(c.Request.Context(), planID)
	if err != nil {
		writeError(c, err, "failed to export plan")
		return
	}

	c.Data(http.StatusOK, "text/markdown; charset=utf-8", []byte(out))
}

func (h *ExportHandler) HTML(c *gin.Context) {
	planID, ok := pathID(c, "id")
	if !ok {
		return
	}

	out, err := h.exports.RenderHTML(c.Request.Context(), planID)
	if err != nil {
		writeError(c, err, "failed to export plan")
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(out))
}
