package models

// Entity represents a top-level academic institution (ENSET, INSTI).
type Entity struct {
	ID          int    `db:"id" json:"id"`
	Name        string `db:"name" json:"name"`
	FullName    string `db:"full_name" json:"fullName"`
	Description string `db:"description" json:"description"`
}

// Department is an academic division owned by an entity.
type Department struct {
	ID          int     `db:"id" json:"id"`
	EntityID    int     `db:"entity_id" json:"entityId"`
	Name        string  `db:"name" json:"name"`
	FullName    string  `db:"full_name" json:"fullName"`
	Description *string `db:"description" json:"description,omitempty"`
}

// Program is a course of study within a department. IsTroncCommun marks the
// shared foundational track offered before specialisation.
type Program struct {
	ID            int     `db:"id" json:"id"`
	DepartmentID  int     `db:"department_id" json:"departmentId"`
	Name          string  `db:"name" json:"name"`
	FullName      *string `db:"full_name" json:"fullName,omitempty"`
	Description   *string `db:"description" json:"description,omitempty"`
	IsTroncCommun bool    `db:"is_tronc_commun" json:"isTroncCommun"`
}

// AcademicYear is a student year level (1st, 2nd, 3rd), distinct from the
// calendar year a document was issued.
type AcademicYear struct {
	ID   int    `db:"id" json:"id"`
	Year int    `db:"year" json:"year"`
	Name string `db:"name" json:"name"`
}

// DocumentType is a global enumeration (Examen final, Contrôle continu, ...).
type DocumentType struct {
	ID   int    `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"page_size"`
	TotalCount int `json:"total_count"`
}
