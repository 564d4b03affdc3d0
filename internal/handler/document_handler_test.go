package handler

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culokossa/culib-api/internal/models"
	"github.com/culokossa/culib-api/internal/service"
)

type stubEntityRepo struct{ entities []models.Entity }

func (s *stubEntityRepo) List(context.Context) ([]models.Entity, error) { return s.entities, nil }
func (s *stubEntityRepo) FindByID(_ context.Context, id int) (*models.Entity, error) {
	for _, e := range s.entities {
		if e.ID == id {
			entity := e
			return &entity, nil
		}
	}
	return nil, sql.ErrNoRows
}

type stubDepartmentRepo struct{ departments []models.Department }

func (s *stubDepartmentRepo) List(context.Context) ([]models.Department, error) {
	return s.departments, nil
}
func (s *stubDepartmentRepo) ListByEntity(_ context.Context, entityID int) ([]models.Department, error) {
	var out []models.Department
	for _, d := range s.departments {
		if d.EntityID == entityID {
			out = append(out, d)
		}
	}
	return out, nil
}
func (s *stubDepartmentRepo) FindByID(_ context.Context, id int) (*models.Department, error) {
	for _, d := range s.departments {
		if d.ID == id {
			department := d
			return &department, nil
		}
	}
	return nil, sql.ErrNoRows
}

type stubProgramRepo struct{ programs []models.Program }

func (s *stubProgramRepo) List(context.Context) ([]models.Program, error) { return s.programs, nil }
func (s *stubProgramRepo) ListByDepartment(_ context.Context, departmentID int) ([]models.Program, error) {
	var out []models.Program
	for _, p := range s.programs {
		if p.DepartmentID == departmentID {
			out = append(out, p)
		}
	}
	return out, nil
}
func (s *stubProgramRepo) FindByID(_ context.Context, id int) (*models.Program, error) {
	for _, p := range s.programs {
		if p.ID == id {
			program := p
			return &program, nil
		}
	}
	return nil, sql.ErrNoRows
}

type stubYearRepo struct{ years []models.AcademicYear }

func (s *stubYearRepo) List(context.Context) ([]models.AcademicYear, error) { return s.years, nil }
func (s *stubYearRepo) FindByID(_ context.Context, id int) (*models.AcademicYear, error) {
	for _, y := range s.years {
		if y.ID == id {
			year := y
			return &year, nil
		}
	}
	return nil, sql.ErrNoRows
}

type stubTypeRepo struct{ types []models.DocumentType }

func (s *stubTypeRepo) List(context.Context) ([]models.DocumentType, error) { return s.types, nil }
func (s *stubTypeRepo) FindByID(_ context.Context, id int) (*models.DocumentType, error) {
	for _, t := range s.types {
		if t.ID == id {
			docType := t
			return &docType, nil
		}
	}
	return nil, sql.ErrNoRows
}

type stubDocumentRepo struct{ docs []models.Document }

func (s *stubDocumentRepo) List(context.Context) ([]models.Document, error) { return s.docs, nil }
func (s *stubDocumentRepo) ListByEntity(context.Context, int) ([]models.Document, error) {
	return nil, nil
}
func (s *stubDocumentRepo) ListByDepartment(context.Context, int) ([]models.Document, error) {
	return nil, nil
}
func (s *stubDocumentRepo) ListRecent(_ context.Context, limit int) ([]models.Document, error) {
	if len(s.docs) > limit {
		return s.docs[:limit], nil
	}
	return s.docs, nil
}
func (s *stubDocumentRepo) FindByID(_ context.Context, id int) (*models.Document, error) {
	for _, d := range s.docs {
		if d.ID == id {
			doc := d
			return &doc, nil
		}
	}
	return nil, sql.ErrNoRows
}
func (s *stubDocumentRepo) Create(_ context.Context, doc *models.Document) error {
	doc.ID = len(s.docs) + 1
	s.docs = append(s.docs, *doc)
	return nil
}
func (s *stubDocumentRepo) Update(context.Context, *models.Document) error { return nil }
func (s *stubDocumentRepo) Delete(context.Context, int) error              { return nil }

type stubStore struct{}

func (stubStore) SaveStream(_ string, r io.Reader) (int64, error) { return io.Copy(io.Discard, r) }
func (stubStore) Delete(string) error                             { return nil }
func (stubStore) Path(filename string) string                     { return filename }
func (stubStore) Open(string) (*os.File, error)                   { return nil, os.ErrNotExist }

func newTestDocumentHandler() *DocumentHandler {
	entities := &stubEntityRepo{entities: []models.Entity{{ID: 1, Name: "ENSET"}}}
	departments := &stubDepartmentRepo{departments: []models.Department{{ID: 1, EntityID: 1, Name: "STI"}}}
	programs := &stubProgramRepo{programs: []models.Program{{ID: 1, DepartmentID: 1, Name: "MA"}}}
	years := &stubYearRepo{years: []models.AcademicYear{{ID: 1, Year: 1, Name: "1ère année"}}}
	types := &stubTypeRepo{types: []models.DocumentType{{ID: 1, Name: "Examen final"}}}
	docs := &stubDocumentRepo{docs: []models.Document{
		{ID: 1, Title: "Analyse Numérique", ProgramID: 1, AcademicYearID: 1, DocumentTypeID: 1},
		{ID: 2, Title: "Comptabilité Générale", ProgramID: 1, AcademicYearID: 1, DocumentTypeID: 1},
	}}
	svc := service.NewDocumentService(docs, entities, departments, programs, years, types, stubStore{}, 10<<20, nil, nil)
	return NewDocumentHandler(svc, stubStore{})
}

type envelope struct {
	Data  json.RawMessage `json:"data"`
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func TestDocumentHandlerListIgnoresMalformedFilters(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestDocumentHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/documents?entityId=abc&programId=-4&documentTypeId=", nil)

	h.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var docs []models.DocumentWithRelations
	require.NoError(t, json.Unmarshal(env.Data, &docs))
	assert.Len(t, docs, 2)
}

func TestDocumentHandlerListAppliesQuery(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestDocumentHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/documents?query=COMPTA", nil)

	h.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var docs []models.DocumentWithRelations
	require.NoError(t, json.Unmarshal(env.Data, &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, 2, docs[0].ID)
}

func TestDocumentHandlerGetRejectsBadID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestDocumentHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/documents/abc", nil)
	c.Params = gin.Params{{Key: "id", Value: "abc"}}

	h.Get(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandlerGetNotFound(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestDocumentHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/documents/99", nil)
	c.Params = gin.Params{{Key: "id", Value: "99"}}

	h.Get(c)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	require.NotNil(t, env.Error)
	assert.Equal(t, "NOT_FOUND", env.Error.Code)
}

func TestDocumentHandlerUploadRequiresFile(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestDocumentHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodPost, "/documents", nil)
	c.Request.Header.Set("Content-Type", "multipart/form-data; boundary=x")

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func multipartUpload(t *testing.T, metadata string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "sujet.pdf")
	require.NoError(t, err)
	_, err = part.Write([]byte("%PDF-1.4 contenu"))
	require.NoError(t, err)
	require.NoError(t, w.WriteField("document", metadata))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/documents", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestDocumentHandlerUploadRejectsInvalidMetadata(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestDocumentHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = multipartUpload(t, "{not json")

	h.Upload(c)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestDocumentHandlerUploadCreatesDocument(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := newTestDocumentHandler()

	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = multipartUpload(t, `{"title":"Mécanique Appliquée","programId":1,"academicYearId":1,"documentTypeId":1,"year":2024}`)

	h.Upload(c)

	require.Equal(t, http.StatusCreated, rec.Code)
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	var doc models.DocumentWithRelations
	require.NoError(t, json.Unmarshal(env.Data, &doc))
	assert.Equal(t, "Mécanique Appliquée", doc.Title)
	assert.Equal(t, 2024, doc.Year)
}
