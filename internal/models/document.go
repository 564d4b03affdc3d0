package models

import "time"

// Document is an uploaded PDF exam paper and its metadata. Year is the
// calendar year the exam was administered, not the academic year level.
type Document struct {
	ID             int       `db:"id" json:"id"`
	Title          string    `db:"title" json:"title"`
	ProgramID      int       `db:"program_id" json:"programId"`
	AcademicYearID int       `db:"academic_year_id" json:"academicYearId"`
	DocumentTypeID int       `db:"document_type_id" json:"documentTypeId"`
	FilePath       string    `db:"file_path" json:"filePath"`
	FileSize       int64     `db:"file_size" json:"fileSize"`
	UploadDate     time.Time `db:"upload_date" json:"uploadDate"`
	Year           int       `db:"year" json:"year"`
	Description    *string   `db:"description" json:"description,omitempty"`
}

// DocumentWithRelations is a read-only projection of a document and its
/// resolved relations. Department and Entity may be absent: they are soft
// dependencies of hydration, unlike program, academic year and document type.
type DocumentWithRelations struct {
	Document
	Program      Program      `json:"program"`
	AcademicYear AcademicYear `json:"academicYear"`
	DocumentType DocumentType `json:"documentType"`
	Department   *Department  `json:"department,omitempty"`
	Entity       *Entity      `json:"entity,omitempty"`
}

// DocumentFilter carries the optional, combinable retrieval criteria of the
// documents listing. A zero id means the filter is absent.
type DocumentFilter struct {
	Query          string
	EntityID       int
	DepartmentID   int
	ProgramID      int
	AcademicYearID int
	DocumentTypeID int
}

// IsZero reports whether no filter and no query were supplied.
func (f DocumentFilter) IsZero() bool {
	return f.Query == "" &&
		f.EntityID == 0 &&
		f.DepartmentID == 0 &&
		f.ProgramID == 0 &&
		f.AcademicYearID == 0 &&
		f.DocumentTypeID == 0
}

// DocumentUpdate holds the optional fields of a partial document update.
type DocumentUpdate struct {
	Title          *string `json:"title"`
	ProgramID      *int    `json:"programId"`
	AcademicYearID *int    `json:"academicYearId"`
	DocumentTypeID *int    `json:"documentTypeId"`
	Year           *int    `json:"year"`
	Description    *string `json:"description"`
}
