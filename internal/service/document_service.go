package service

import (
	"bytes"
	"context"
	"database/sql"
	"fmt"
	"io"
	"net/http"
	"path"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/culokossa/culib-api/internal/models"
	appErrors "github.com/culokossa/culib-api/pkg/errors"
)

type documentRepository interface {
	List(ctx context.Context) ([]models.Document, error)
	ListByEntity(ctx context.Context, entityID int) ([]models.Document, error)
	ListByDepartment(ctx context.Context, departmentID int) ([]models.Document, error)
	ListRecent(ctx context.Context, limit int) ([]models.Document, error)
	FindByID(ctx context.Context, id int) (*models.Document, error)
	Create(ctx context.Context, document *models.Document) error
	Update(ctx context.Context, document *models.Document) error
	Delete(ctx context.Context, id int) error
}

type fileStore interface {
	SaveStream(filename string, r io.Reader) (int64, error)
	Delete(filename string) error
	Path(filename string) string
}

// UploadDocumentRequest carries a validated upload: the document metadata plus
// the PDF stream read from the multipart form.
type UploadDocumentRequest struct {
	Title          string  `validate:"required"`
	ProgramID      int     `validate:"required,gt=0"`
	AcademicYearID int     `validate:"required,gt=0"`
	DocumentTypeID int     `validate:"required,gt=0"`
	Year           int     `validate:"required,gt=0"`
	Description    *string `validate:"-"`
	FileName       string  `validate:"required"`
	Size           int64   `validate:"required,gt=0"`
	File           io.Reader
}

// DocumentService implements the document listing, retrieval and admin
// lifecycle use-cases. Reads go through a relation snapshot so every document
// in a response is hydrated against the same catalog state.
type DocumentService struct {
	documents   documentRepository
	entities    entityRepository
	departments departmentRepository
	programs    programRepository
	years       academicYearRepository
	types       documentTypeRepository
	store       fileStore
	maxSize     int64
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewDocumentService constructs the document service.
func NewDocumentService(
	documents documentRepository,
	entities entityRepository,
	departments departmentRepository,
	programs programRepository,
	years academicYearRepository,
	types documentTypeRepository,
	store fileStore,
	maxSize int64,
	validate *validator.Validate,
	logger *zap.Logger,
) *DocumentService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if maxSize <= 0 {
		maxSize = 10 << 20
	}
	return &DocumentService{
		documents:   documents,
		entities:    entities,
		departments: departments,
		programs:    programs,
		years:       years,
		types:       types,
		store:       store,
		maxSize:     maxSize,
		validator:   validate,
		logger:      logger,
	}
}

// relationSet is a point-in-time snapshot of the catalog used to hydrate a
// batch of documents. Loading it once per request keeps a single listing
// internally consistent even while admins mutate the catalog.
type relationSet struct {
	programs    map[int]models.Program
	years       map[int]models.AcademicYear
	types       map[int]models.DocumentType
	departments map[int]models.Department
	entities    map[int]models.Entity
}

func (s *DocumentService) loadRelations(ctx context.Context) (*relationSet, error) {
	programs, err := s.programs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load programs: %w", err)
	}
	years, err := s.years.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load academic years: %w", err)
	}
	types, err := s.types.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load document types: %w", err)
	}
	departments, err := s.departments.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load departments: %w", err)
	}
	entities, err := s.entities.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("load entities: %w", err)
	}
	rs := &relationSet{
		programs:    make(map[int]models.Program, len(programs)),
		years:       make(map[int]models.AcademicYear, len(years)),
		types:       make(map[int]models.DocumentType, len(types)),
		departments: make(map[int]models.Department, len(departments)),
		entities:    make(map[int]models.Entity, len(entities)),
	}
	for _, p := range programs {
		rs.programs[p.ID] = p
	}
	for _, y := range years {
		rs.years[y.ID] = y
	}
	for _, t := range types {
		rs.types[t.ID] = t
	}
	for _, d := range departments {
		rs.departments[d.ID] = d
	}
	for _, e := range entities {
		rs.entities[e.ID] = e
	}
	return rs, nil
}

// hydrate resolves a document's relations against the snapshot. Program,
// academic year and document type are required: when any of them is missing
// the document is dropped from results rather than served half-resolved.
// Department and entity are best-effort and may be nil.
func (rs *relationSet) hydrate(doc models.Document) (*models.DocumentWithRelations, bool) {
	program, ok := rs.programs[doc.ProgramID]
	if !ok {
		return nil, false
	}
	year, ok := rs.years[doc.AcademicYearID]
	if !ok {
		return nil, false
	}
	docType, ok := rs.types[doc.DocumentTypeID]
	if !ok {
		return nil, false
	}
	out := &models.DocumentWithRelations{
		Document:     doc,
		Program:      program,
		AcademicYear: year,
		DocumentType: docType,
	}
	if department, ok := rs.departments[program.DepartmentID]; ok {
		out.Department = &department
		if entity, ok := rs.entities[department.EntityID]; ok {
			out.Entity = &entity
		}
	}
	return out, true
}

// matchesQuery reports whether any searchable field of the hydrated document
// contains the lowercased query as a substring. Fields are checked in rough
// order of selectivity so common title hits short-circuit early.
func matchesQuery(doc *models.DocumentWithRelations, query string) bool {
	if strings.Contains(strings.ToLower(doc.Title), query) {
		return true
	}
	if doc.Description != nil && strings.Contains(strings.ToLower(*doc.Description), query) {
		return true
	}
	if strings.Contains(strings.ToLower(doc.Program.Name), query) {
		return true
	}
	if doc.Program.FullName != nil && strings.Contains(strings.ToLower(*doc.Program.FullName), query) {
		return true
	}
	if strings.Contains(strings.ToLower(doc.AcademicYear.Name), query) {
		return true
	}
	if strings.Contains(strings.ToLower(doc.DocumentType.Name), query) {
		return true
	}
	if doc.Department != nil {
		if strings.Contains(strings.ToLower(doc.Department.Name), query) {
			return true
		}
		if strings.Contains(strings.ToLower(doc.Department.FullName), query) {
			return true
		}
	}
	if doc.Entity != nil {
		if strings.Contains(strings.ToLower(doc.Entity.Name), query) {
			return true
		}
		if strings.Contains(strings.ToLower(doc.Entity.FullName), query) {
			return true
		}
	}
	return false
}

// Find returns hydrated documents matching the filter. Structural criteria
// compose with AND semantics; the free-text query then narrows the structural
// result the same way.
func (s *DocumentService) Find(ctx context.Context, filter models.DocumentFilter) ([]models.DocumentWithRelations, error) {
	var (
		documents []models.Document
		err       error
	)
	switch {
	case filter.EntityID > 0:
		documents, err = s.documents.ListByEntity(ctx, filter.EntityID)
	case filter.DepartmentID > 0:
		documents, err = s.documents.ListByDepartment(ctx, filter.DepartmentID)
	default:
		documents, err = s.documents.List(ctx)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list documents")
	}

	rs, err := s.loadRelations(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document relations")
	}

	// Department can arrive alongside entity; the entity scan above is the
	// broader set, so narrow it here instead of issuing a second query.
	if filter.EntityID > 0 && filter.DepartmentID > 0 {
		documents = filterInPlace(documents, func(d models.Document) bool {
			program, ok := rs.programs[d.ProgramID]
			return ok && program.DepartmentID == filter.DepartmentID
		})
	}
	if filter.ProgramID > 0 {
		documents = filterInPlace(documents, func(d models.Document) bool {
			return d.ProgramID == filter.ProgramID
		})
	}
	if filter.AcademicYearID > 0 {
		documents = filterInPlace(documents, func(d models.Document) bool {
			return d.AcademicYearID == filter.AcademicYearID
		})
	}
	if filter.DocumentTypeID > 0 {
		documents = filterInPlace(documents, func(d models.Document) bool {
			return d.DocumentTypeID == filter.DocumentTypeID
		})
	}

	query := strings.ToLower(strings.TrimSpace(filter.Query))
	results := make([]models.DocumentWithRelations, 0, len(documents))
	for _, doc := range documents {
		hydrated, ok := rs.hydrate(doc)
		if !ok {
			s.logger.Warn("dropping document with unresolved relations", zap.Int("document_id", doc.ID))
			continue
		}
		if query != "" && !matchesQuery(hydrated, query) {
			continue
		}
		results = append(results, *hydrated)
	}
	return results, nil
}

func filterInPlace(docs []models.Document, keep func(models.Document) bool) []models.Document {
	out := docs[:0]
	for _, d := range docs {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out
}

// Get returns one hydrated document.
func (s *DocumentService) Get(ctx context.Context, id int) (*models.DocumentWithRelations, error) {
	document, err := s.documents.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	rs, err := s.loadRelations(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document relations")
	}
	hydrated, ok := rs.hydrate(*document)
	if !ok {
		s.logger.Warn("document has unresolved relations", zap.Int("document_id", document.ID))
		return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
	}
	return hydrated, nil
}

// Recent returns the latest uploads, hydrated, newest first.
func (s *DocumentService) Recent(ctx context.Context, limit int) ([]models.DocumentWithRelations, error) {
	if limit <= 0 {
		limit = 3
	}
	documents, err := s.documents.ListRecent(ctx, limit)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list recent documents")
	}
	rs, err := s.loadRelations(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document relations")
	}
	results := make([]models.DocumentWithRelations, 0, len(documents))
	for _, doc := range documents {
		if hydrated, ok := rs.hydrate(doc); ok {
			results = append(results, *hydrated)
		}
	}
	return results, nil
}

// Upload validates and stores a new PDF, then records its metadata. The file
// lands on disk under a generated name before the insert; a failed insert
// removes the file again so storage never leaks orphans.
func (s *DocumentService) Upload(ctx context.Context, req UploadDocumentRequest) (*models.Document, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid document payload")
	}
	if req.File == nil {
		return nil, appErrors.Clone(appErrors.ErrValidation, "document file is required")
	}
	if req.Size > s.maxSize {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds the %d byte limit", s.maxSize))
	}

	// Sniff the real content instead of trusting the declared type.
	head := make([]byte, 512)
	n, err := io.ReadFull(req.File, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to read upload")
	}
	head = head[:n]
	if detected := http.DetectContentType(head); detected != "application/pdf" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "only PDF files are accepted")
	}

	if err := s.checkRelations(ctx, req.ProgramID, req.AcademicYearID, req.DocumentTypeID); err != nil {
		return nil, err
	}

	filename := uuid.NewString() + ".pdf"
	reader := io.MultiReader(bytes.NewReader(head), io.LimitReader(req.File, s.maxSize))
	written, err := s.store.SaveStream(filename, reader)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store file")
	}
	if written > s.maxSize {
		_ = s.store.Delete(filename)
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("file exceeds the %d byte limit", s.maxSize))
	}

	document := &models.Document{
		Title:          req.Title,
		ProgramID:      req.ProgramID,
		AcademicYearID: req.AcademicYearID,
		DocumentTypeID: req.DocumentTypeID,
		FilePath:       "/uploads/" + filename,
		FileSize:       written,
		Year:           req.Year,
		Description:    req.Description,
	}
	if err := s.documents.Create(ctx, document); err != nil {
		if delErr := s.store.Delete(filename); delErr != nil {
			s.logger.Warn("failed to remove orphaned upload", zap.String("file", filename), zap.Error(delErr))
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create document")
	}
	return document, nil
}

// Update applies a partial metadata update. Absent fields keep their value;
// the stored file is untouched.
func (s *DocumentService) Update(ctx context.Context, id int, update models.DocumentUpdate) (*models.Document, error) {
	document, err := s.documents.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	if update.Title != nil {
		document.Title = *update.Title
	}
	if update.ProgramID != nil {
		document.ProgramID = *update.ProgramID
	}
	if update.AcademicYearID != nil {
		document.AcademicYearID = *update.AcademicYearID
	}
	if update.DocumentTypeID != nil {
		document.DocumentTypeID = *update.DocumentTypeID
	}
	if update.Year != nil {
		document.Year = *update.Year
	}
	if update.Description != nil {
		document.Description = update.Description
	}
	if err := s.checkRelations(ctx, document.ProgramID, document.AcademicYearID, document.DocumentTypeID); err != nil {
		return nil, err
	}
	if err := s.documents.Update(ctx, document); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update document")
	}
	return document, nil
}

// checkRelations verifies that the referenced program, academic year and
// document type all exist before a write reaches the database.
func (s *DocumentService) checkRelations(ctx context.Context, programID, academicYearID, documentTypeID int) error {
	if _, err := s.programs.FindByID(ctx, programID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrValidation, "unknown program")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate program")
	}
	if _, err := s.years.FindByID(ctx, academicYearID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrValidation, "unknown academic year")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate academic year")
	}
	if _, err := s.types.FindByID(ctx, documentTypeID); err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrValidation, "unknown document type")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to validate document type")
	}
	return nil
}

// Delete removes the document record first, then its stored file. Only files
// under the managed uploads prefix are touched.
func (s *DocumentService) Delete(ctx context.Context, id int) error {
	document, err := s.documents.FindByID(ctx, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return appErrors.Clone(appErrors.ErrNotFound, "document not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load document")
	}
	if err := s.documents.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete document")
	}
	if strings.HasPrefix(document.FilePath, "/uploads/") {
		filename := path.Base(document.FilePath)
		if err := s.store.Delete(filename); err != nil {
			s.logger.Warn("failed to remove stored file", zap.String("file", filename), zap.Error(err))
		}
	}
	return nil
}
