package handler

import (
	"encoding/json"
	"net/http"
	"os"
	"path"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/culokossa/culib-api/internal/models"
	"github.com/culokossa/culib-api/internal/service"
	appErrors "github.com/culokossa/culib-api/pkg/errors"
	"github.com/culokossa/culib-api/pkg/response"
)

type fileOpener interface {
	Open(filename string) (*os.File, error)
}

// DocumentHandler exposes the document listing, retrieval and admin endpoints.
type DocumentHandler struct {
	documents *service.DocumentService
	files     fileOpener
}

// NewDocumentHandler constructs DocumentHandler.
func NewDocumentHandler(documents *service.DocumentService, files fileOpener) *DocumentHandler {
	return &DocumentHandler{documents: documents, files: files}
}

// List godoc
// @Summary List documents
// @Description List documents filtered by catalog criteria and free-text search
// @Tags Documents
// @Produce json
// @Param query query string false "Free-text search"
// @Param entityId query int false "Filter by entity"
// @Param departmentId query int false "Filter by department"
// @Param programId query int false "Filter by program"
// @Param academicYearId query int false "Filter by academic year"
// @Param documentTypeId query int false "Filter by document type"
// @Success 200 {object} response.Envelope
// @Router /documents [get]
func (h *DocumentHandler) List(c *gin.Context) {
	filter := models.DocumentFilter{
		Query:          strings.TrimSpace(c.Query("query")),
		EntityID:       optionalIntQuery(c, "entityId"),
		DepartmentID:   optionalIntQuery(c, "departmentId"),
		ProgramID:      optionalIntQuery(c, "programId"),
		AcademicYearID: optionalIntQuery(c, "academicYearId"),
		DocumentTypeID: optionalIntQuery(c, "documentTypeId"),
	}
	documents, err := h.documents.Find(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, documents, nil)
}

// Recent godoc
// @Summary Recently uploaded documents
// @Tags Documents
// @Produce json
// @Param limit query int false "Maximum results"
// @Success 200 {object} response.Envelope
// @Router /documents/recent [get]
func (h *DocumentHandler) Recent(c *gin.Context) {
	documents, err := h.documents.Recent(c.Request.Context(), optionalIntQuery(c, "limit"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, documents, nil)
}

// Get godoc
// @Summary Get document detail
// @Tags Documents
// @Produce json
// @Param id path int true "Document ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/{id} [get]
func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	document, err := h.documents.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, document, nil)
}

// Upload godoc
// @Summary Upload a document
// @Description Store a PDF exam paper with its catalog metadata
// @Tags Documents
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param file formData file true "PDF file"
// @Param document formData string true "Document metadata JSON"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /documents [post]
func (h *DocumentHandler) Upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "document file is required"))
		return
	}

	var meta documentMetadata
	if err := json.Unmarshal([]byte(c.PostForm("document")), &meta); err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "invalid document metadata"))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload"))
		return
	}
	defer file.Close() //nolint:errcheck

	req := service.UploadDocumentRequest{
		Title:          strings.TrimSpace(meta.Title),
		ProgramID:      meta.ProgramID,
		AcademicYearID: meta.AcademicYearID,
		DocumentTypeID: meta.DocumentTypeID,
		Year:           meta.Year,
		FileName:       fileHeader.Filename,
		Size:           fileHeader.Size,
		File:           file,
	}
	if meta.Description != nil {
		if description := strings.TrimSpace(*meta.Description); description != "" {
			req.Description = &description
		}
	}

	document, err := h.documents.Upload(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, document)
}

// documentMetadata is the JSON payload carried in the multipart "document" field.
type documentMetadata struct {
	Title          string  `json:"title"`
	Description    *string `json:"description"`
	ProgramID      int     `json:"programId"`
	AcademicYearID int     `json:"academicYearId"`
	DocumentTypeID int     `json:"documentTypeId"`
	Year           int     `json:"year"`
}

// Update godoc
// @Summary Update document metadata
// @Tags Documents
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Param payload body models.DocumentUpdate true "Fields to update"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /documents/{id} [put]
func (h *DocumentHandler) Update(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var update models.DocumentUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid payload"))
		return
	}
	document, err := h.documents.Update(c.Request.Context(), id, update)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, document, nil)
}

// Delete godoc
// @Summary Delete a document
// @Tags Documents
// @Security BearerAuth
// @Param id path int true "Document ID"
// @Success 204 "No Content"
// @Failure 404 {object} response.Envelope
// @Router /documents/{id} [delete]
func (h *DocumentHandler) Delete(c *gin.Context) {
	id, err := pathID(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.documents.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// ServeFile godoc
// @Summary Download a stored PDF
// @Tags Documents
// @Produce application/pdf
// @Param filename path string true "Stored file name"
// @Success 200 {file} file
// @Failure 404 {object} response.Envelope
// @Router /uploads/{filename} [get]
func (h *DocumentHandler) ServeFile(c *gin.Context) {
	// Base strips any traversal components from the route parameter.
	filename := path.Base(c.Param("filename"))
	if filename == "." || filename == "/" {
		response.Error(c, appErrors.ErrNotFound)
		return
	}
	file, err := h.files.Open(filename)
	if err != nil {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "file not found"))
		return
	}
	defer file.Close() //nolint:errcheck

	info, err := file.Stat()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to stat file"))
		return
	}
	c.Header("Content-Disposition", `inline; filename="`+filename+`"`)
	c.DataFromReader(http.StatusOK, info.Size(), "application/pdf", file, nil)
}

