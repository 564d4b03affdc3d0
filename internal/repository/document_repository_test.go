package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culokossa/culib-api/internal/models"
)

func newRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func documentRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "title", "program_id", "academic_year_id", "document_type_id", "file_path", "file_size", "upload_date", "year", "description"})
}

func TestDocumentRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	rows := documentRows().
		AddRow(1, "Analyse Numérique", 2, 2, 3, "/uploads/a.pdf", 3028, time.Now(), 2023, nil).
		AddRow(2, "Programmation Java", 31, 1, 1, "/uploads/b.pdf", 13264, time.Now(), 2023, "Examen final")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, program_id, academic_year_id, document_type_id, file_path, file_size, upload_date, year, description FROM documents ORDER BY id")).
		WillReturnRows(rows)

	documents, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, documents, 2)
	assert.Equal(t, "Analyse Numérique", documents[0].Title)
	assert.Nil(t, documents[0].Description)
	require.NotNil(t, documents[1].Description)
	assert.Equal(t, "Examen final", *documents[1].Description)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryListByEntity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery("SELECT d.id, d.title, .+ FROM documents d\\s+JOIN programs p ON p.id = d.program_id\\s+JOIN departments dep ON dep.id = p.department_id\\s+WHERE dep.entity_id = \\$1").
		WithArgs(1).
		WillReturnRows(documentRows().AddRow(1, "Analyse Numérique", 2, 2, 3, "/uploads/a.pdf", 3028, time.Now(), 2023, nil))

	documents, err := repo.ListByEntity(context.Background(), 1)
	require.NoError(t, err)
	assert.Len(t, documents, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryListRecent(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, title, program_id, academic_year_id, document_type_id, file_path, file_size, upload_date, year, description FROM documents ORDER BY upload_date DESC LIMIT $1")).
		WithArgs(3).
		WillReturnRows(documentRows().AddRow(2, "Programmation Java", 31, 1, 1, "/uploads/b.pdf", 13264, time.Now(), 2023, nil))

	documents, err := repo.ListRecent(context.Background(), 3)
	require.NoError(t, err)
	assert.Len(t, documents, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery("SELECT .+ FROM documents WHERE id = \\$1").
		WithArgs(42).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 42)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryCountPerEntity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	rows := sqlmock.NewRows([]string{"entity_id", "entity_name", "count"}).
		AddRow(1, "ENSET", 2).
		AddRow(2, "INSTI", 1)
	mock.ExpectQuery("SELECT e.id AS entity_id, e.name AS entity_name, COUNT\\(d.id\\) AS count").
		WillReturnRows(rows)

	counts, err := repo.CountPerEntity(context.Background())
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "ENSET", counts[0].EntityName)
	assert.Equal(t, 2, counts[0].Count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryCreateAssignsID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectQuery("INSERT INTO documents").
		WithArgs("Nouvel examen", 2, 1, 1, "/uploads/n.pdf", int64(2048), sqlmock.AnyArg(), 2024, nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(7))

	document := &models.Document{
		Title:          "Nouvel examen",
		ProgramID:      2,
		AcademicYearID: 1,
		DocumentTypeID: 1,
		FilePath:       "/uploads/n.pdf",
		FileSize:       2048,
		Year:           2024,
	}
	require.NoError(t, repo.Create(context.Background(), document))
	assert.Equal(t, 7, document.ID)
	assert.False(t, document.UploadDate.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocumentRepository(db)

	mock.ExpectExec("DELETE FROM documents WHERE id = \\$1").
		WithArgs(3).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), 3))
	assert.NoError(t, mock.ExpectationsWereMet())
}
