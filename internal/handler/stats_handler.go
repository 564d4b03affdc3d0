package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/culokossa/culib-api/internal/service"
	"github.com/culokossa/culib-api/pkg/response"
)

// StatsHandler exposes the public usage statistics endpoints.
type StatsHandler struct {
	stats *service.StatsService
}

// NewStatsHandler constructs StatsHandler.
func NewStatsHandler(stats *service.StatsService) *StatsHandler {
	return &StatsHandler{stats: stats}
}

// Summary godoc
// @Summary Usage statistics overview
// @Tags Statistics
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /stats [get]
func (h *StatsHandler) Summary(c *gin.Context) {
	summary, err := h.stats.Summary(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, summary, nil)
}

// TrackDownload godoc
// @Summary Record a document download
// @Tags Statistics
// @Param documentId path int true "Document ID"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Router /stats/track-download/{documentId} [post]
func (h *StatsHandler) TrackDownload(c *gin.Context) {
	id, err := pathParamID(c, "documentId")
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.stats.TrackDownload(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// TrackVisit godoc
// @Summary Record a site visit
// @Tags Statistics
// @Success 204 "No Content"
// @Router /stats/track-visit [post]
func (h *StatsHandler) TrackVisit(c *gin.Context) {
	if err := h.stats.TrackVisit(c.Request.Context()); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// TopDownloaded godoc
// @Summary Most downloaded documents
// @Tags Statistics
// @Produce json
// @Param limit query int false "Maximum results"
// @Success 200 {object} response.Envelope
// @Router /stats/top-downloads [get]
func (h *StatsHandler) TopDownloaded(c *gin.Context) {
	top, err := h.stats.TopDownloaded(c.Request.Context(), optionalIntQuery(c, "limit"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, top, nil)
}
