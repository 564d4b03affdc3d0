package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/culokossa/culib-api/internal/models"
)

func TestEntityRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEntityRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "full_name", "description"}).
		AddRow(1, "ENSET", "École Normale Supérieure de l'Enseignement Technique", "ENSET Lokossa").
		AddRow(2, "INSTI", "Institut National des Sciences et Techniques Industrielles", "INSTI Lokossa")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name, full_name, description FROM entities ORDER BY id")).
		WillReturnRows(rows)

	entities, err := repo.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entities, 2)
	assert.Equal(t, "ENSET", entities[0].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntityRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewEntityRepository(db)

	mock.ExpectQuery("SELECT .+ FROM entities WHERE id = \\$1").
		WithArgs(9).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), 9)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDepartmentRepositoryListByEntity(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDepartmentRepository(db)

	rows := sqlmock.NewRows([]string{"id", "entity_id", "name", "full_name", "description"}).
		AddRow(1, 1, "STI", "Sciences et Techniques Industrielles", nil).
		AddRow(2, 1, "STAG", "Sciences et Techniques Administratives et de Gestion", nil)
	mock.ExpectQuery("SELECT .+ FROM departments WHERE entity_id = \\$1").
		WithArgs(1).
		WillReturnRows(rows)

	departments, err := repo.ListByEntity(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, departments, 2)
	assert.Equal(t, 1, departments[0].EntityID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestProgramRepositoryListByDepartment(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewProgramRepository(db)

	rows := sqlmock.NewRows([]string{"id", "department_id", "name", "full_name", "description", "is_tronc_commun"}).
		AddRow(1, 1, "Tronc commun", "Tronc commun", "Programme de tronc commun", true).
		AddRow(2, 1, "MA", "Mathématiques Appliquées", nil, false)
	mock.ExpectQuery("SELECT .+ FROM programs WHERE department_id = \\$1").
		WithArgs(1).
		WillReturnRows(rows)

	programs, err := repo.ListByDepartment(context.Background(), 1)
	require.NoError(t, err)
	require.Len(t, programs, 2)
	assert.True(t, programs[0].IsTroncCommun)
	assert.False(t, programs[1].IsTroncCommun)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAcademicYearRepositoryList(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAcademicYearRepository(db)

	rows := sqlmock.NewRows([]string{"id", "year", "name"}).
		AddRow(1, 1, "1ère année").
		AddRow(2, 2, "2ème année").
		AddRow(3, 3, "3ème année")
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, year, name FROM academic_years ORDER BY id")).
		WillReturnRows(rows)

	years, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, years, 3)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentTypeRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewDocumentTypeRepository(db)

	mock.ExpectQuery("INSERT INTO document_types").
		WithArgs("Examen final").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))

	docType := &models.DocumentType{Name: "Examen final"}
	require.NoError(t, repo.Create(context.Background(), docType))
	assert.Equal(t, 1, docType.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepositoryFindByUsername(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	rows := sqlmock.NewRows([]string{"id", "username", "password", "name", "role"}).
		AddRow(1, "admin", "$2a$10$hash", "Administrateur", "admin")
	mock.ExpectQuery("SELECT .+ FROM users WHERE username = \\$1").
		WithArgs("admin").
		WillReturnRows(rows)

	user, err := repo.FindByUsername(context.Background(), "admin")
	require.NoError(t, err)
	assert.Equal(t, "Administrateur", user.Name)
	assert.Equal(t, "$2a$10$hash", user.PasswordHash)
	assert.NoError(t, mock.ExpectationsWereMet())
}
