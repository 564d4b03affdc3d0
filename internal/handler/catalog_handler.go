package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/culokossa/culib-api/internal/service"
	appErrors "github.com/culokossa/culib-api/pkg/errors"
	"github.com/culokossa/culib-api/pkg/response"
)

// CatalogHandler exposes the institutional catalog endpoints.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs CatalogHandler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// optionalIntQuery parses a numeric query parameter. Absent or malformed
// values yield zero, matching the listing contract of ignoring bad filters.
func optionalIntQuery(c *gin.Context, name string) int {
	raw := c.Query(name)
	if raw == "" {
		return 0
	}
	value, err := strconv.Atoi(raw)
	if err != nil || value < 0 {
		return 0
	}
	return value
}

func pathID(c *gin.Context) (int, error) {
	return pathParamID(c, "id")
}

func pathParamID(c *gin.Context, name string) (int, error) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		return 0, appErrors.Clone(appErrors.ErrValidation, "invalid id")
	}
	return id, nil
}

// ListEntities godoc
// @Summary List entities
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /entities [get]
func (h *CatalogHandler) ListEntities(c *gin.Context) {
	entities, err := h.catalog.ListEntities(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entities, nil)
}

// GetEntity godoc
// @Summary Get entity
// @Tags Catalog
// @Produce json
// @Param id path int true "Entity ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /entities/{id} [get]
func (h *CatalogHandler) GetEntity(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	entity, err := h.catalog.GetEntity(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entity, nil)
}

// ListDepartments godoc
// @Summary List departments
// @Tags Catalog
// @Produce json
// @Param entityId query int false "Filter by entity"
// @Success 200 {object} response.Envelope
// @Router /departments [get]
func (h *CatalogHandler) ListDepartments(c *gin.Context) {
	departments, err := h.catalog.ListDepartments(c.Request.Context(), optionalIntQuery(c, "entityId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, departments, nil)
}

// GetDepartment godoc
// @Summary Get department
// @Tags Catalog
// @Produce json
// @Param id path int true "Department ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /departments/{id} [get]
func (h *CatalogHandler) GetDepartment(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	department, err := h.catalog.GetDepartment(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, department, nil)
}

// ListPrograms godoc
// @Summary List programs
// @Tags Catalog
// @Produce json
// @Param departmentId query int false "Filter by department"
// @Success 200 {object} response.Envelope
// @Router /programs [get]
func (h *CatalogHandler) ListPrograms(c *gin.Context) {
	programs, err := h.catalog.ListPrograms(c.Request.Context(), optionalIntQuery(c, "departmentId"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, programs, nil)
}

// GetProgram godoc
// @Summary Get program
// @Tags Catalog
// @Produce json
// @Param id path int true "Program ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /programs/{id} [get]
func (h *CatalogHandler) GetProgram(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	program, err := h.catalog.GetProgram(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, program, nil)
}

// ListAcademicYears godoc
// @Summary List academic years
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /academic-years [get]
func (h *CatalogHandler) ListAcademicYears(c *gin.Context) {
	years, err := h.catalog.ListAcademicYears(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, years, nil)
}

// ListDocumentTypes godoc
// @Summary List document types
// @Tags Catalog
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /document-types [get]
func (h *CatalogHandler) ListDocumentTypes(c *gin.Context) {
	types, err := h.catalog.ListDocumentTypes(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, types, nil)
}
