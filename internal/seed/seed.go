package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id SERIAL PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	name TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'admin'
);

CREATE TABLE IF NOT EXISTS entities (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL,
	full_name TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS departments (
	id SERIAL PRIMARY KEY,
	entity_id INTEGER NOT NULL REFERENCES entities(id),
	name TEXT NOT NULL,
	full_name TEXT NOT NULL,
	description TEXT
);

CREATE TABLE IF NOT EXISTS programs (
	id SERIAL PRIMARY KEY,
	department_id INTEGER NOT NULL REFERENCES departments(id),
	name TEXT NOT NULL,
	full_name TEXT,
	description TEXT,
	is_tronc_commun BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS academic_years (
	id SERIAL PRIMARY KEY,
	year INTEGER NOT NULL,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS document_types (
	id SERIAL PRIMARY KEY,
	name TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS documents (
	id SERIAL PRIMARY KEY,
	title TEXT NOT NULL,
	program_id INTEGER NOT NULL REFERENCES programs(id),
	academic_year_id INTEGER NOT NULL REFERENCES academic_years(id),
	document_type_id INTEGER NOT NULL REFERENCES document_types(id),
	file_path TEXT NOT NULL,
	file_size BIGINT NOT NULL DEFAULT 0,
	upload_date TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	year INTEGER NOT NULL,
	description TEXT
);

CREATE INDEX IF NOT EXISTS idx_departments_entity ON departments(entity_id);
CREATE INDEX IF NOT EXISTS idx_programs_department ON programs(department_id);
CREATE INDEX IF NOT EXISTS idx_documents_program ON documents(program_id);
CREATE INDEX IF NOT EXISTS idx_documents_upload_date ON documents(upload_date);
`

// Options controls what the seeder installs beyond the schema.
type Options struct {
	AdminUsername   string
	AdminPassword   string
	AdminName       string
	SampleDocuments bool
}

type programSeed struct {
	name        string
	fullName    string
	description string
	troncCommun bool
}

type departmentSeed struct {
	name        string
	fullName    string
	description string
	programs    []programSeed
}

type entitySeed struct {
	name        string
	fullName    string
	description string
	departments []departmentSeed
}

func troncCommun() programSeed {
	return programSeed{
		name:        "Tronc commun",
		fullName:    "Tronc commun",
		description: "Programme de tronc commun",
		troncCommun: true,
	}
}

func catalog() []entitySeed {
	return []entitySeed{
		{
			name:        "ENSET",
			fullName:    "École Normale Supérieure de l'Enseignement Technique",
			description: "École Normale Supérieure de l'Enseignement Technique du Centre Universitaire de Lokossa",
			departments: []departmentSeed{
				{
					name:        "STI",
					fullName:    "Sciences et Techniques Industrielles",
					description: "Département des Sciences et Techniques Industrielles",
					programs: []programSeed{
						troncCommun(),
						{name: "MA", fullName: "Mathématiques Appliquées", description: "Programme de Mathématiques Appliquées"},
						{name: "FM", fullName: "Fabrication Mécanique", description: "Programme de Fabrication Mécanique"},
						{name: "GC", fullName: "Génie Civil", description: "Programme de Génie Civil"},
						{name: "ELT", fullName: "Électrotechnique", description: "Programme d'Électrotechnique"},
						{name: "ELE", fullName: "Électronique", description: "Programme d'Électronique"},
						{name: "ER", fullName: "Énergies Renouvelables", description: "Programme d'Énergies Renouvelables"},
						{name: "FC", fullName: "Froid et Climatisation", description: "Programme de Froid et Climatisation"},
					},
				},
				{
					name:        "STA",
					fullName:    "Sciences et Techniques Agricoles",
					description: "Département des Sciences et Techniques Agricoles",
					programs: []programSeed{
						troncCommun(),
						{name: "PA", fullName: "Production Animale", description: "Programme de Production Animale"},
						{name: "PV", fullName: "Production Végétale", description: "Programme de Production Végétale"},
					},
				},
				{
					name:        "STAG",
					fullName:    "Sciences et Techniques Administratives et de Gestion",
					description: "Département des Sciences et Techniques Administratives et de Gestion",
					programs: []programSeed{
						troncCommun(),
						{name: "ECO", fullName: "Économie", description: "Programme d'Économie"},
						{name: "CG", fullName: "Comptabilité et Gestion", description: "Programme de Comptabilité et Gestion"},
						{name: "SAG", fullName: "Sciences et Administration de Gestion", description: "Programme de Sciences et Administration de Gestion"},
					},
				},
				{
					name:        "STBASS",
					fullName:    "Sciences et Techniques Biologiques Appliquées et Sciences Sociales",
					description: "Département des Sciences et Techniques Biologiques Appliquées et Sciences Sociales",
					programs: []programSeed{
						troncCommun(),
						{name: "HR", fullName: "Hôtellerie et Restauration", description: "Programme d'Hôtellerie et Restauration"},
						{name: "MMV", fullName: "Marketing et Management de la Vente", description: "Programme de Marketing et Management de la Vente"},
						{name: "EFS", fullName: "Éducation Familiale et Sociale", description: "Programme d'Éducation Familiale et Sociale"},
					},
				},
			},
		},
		{
			name:        "INSTI",
			fullName:    "Institut National des Sciences et Techniques Industrielles",
			description: "Institut National des Sciences et Techniques Industrielles du Centre Universitaire de Lokossa",
			departments: []departmentSeed{
				{
					name:        "GE",
					fullName:    "Génie Énergétique",
					description: "Département de Génie Énergétique",
					programs: []programSeed{
						troncCommun(),
						{name: "FC", fullName: "Froid et Climatisation", description: "Programme de Froid et Climatisation"},
						{name: "ER", fullName: "Énergies Renouvelables", description: "Programme d'Énergies Renouvelables"},
					},
				},
				{
					name:        "GC",
					fullName:    "Génie Civil",
					description: "Département de Génie Civil",
					programs: []programSeed{
						troncCommun(),
						{name: "GC", fullName: "Génie Civil", description: "Programme de Génie Civil"},
					},
				},
				{
					name:        "MSY",
					fullName:    "Maintenance des Systèmes",
					description: "Département de Maintenance des Systèmes",
					programs: []programSeed{
						troncCommun(),
						{name: "MI", fullName: "Maintenance Industrielle", description: "Programme de Maintenance Industrielle"},
						{name: "MA", fullName: "Mathématiques Appliquées", description: "Programme de Mathématiques Appliquées"},
					},
				},
				{
					name:        "GEI",
					fullName:    "Génie Électrique et Informatique",
					description: "Département de Génie Électrique et Informatique",
					programs: []programSeed{
						troncCommun(),
						{name: "IT", fullName: "Informatique", description: "Programme d'Informatique"},
						{name: "ELE", fullName: "Électronique", description: "Programme d'Électronique"},
						{name: "ELT", fullName: "Électrotechnique", description: "Programme d'Électrotechnique"},
					},
				},
				{
					name:        "GMP",
					fullName:    "Génie Mécanique et Productique",
					description: "Département de Génie Mécanique et Productique",
					programs: []programSeed{
						troncCommun(),
						{name: "GMP", fullName: "Génie Mécanique et Productique", description: "Programme de Génie Mécanique et Productique"},
					},
				},
			},
		},
	}
}

// Run creates the schema and installs the reference catalog on first start.
// Seeding is skipped when entities already exist, so restarts are safe.
func Run(ctx context.Context, db *sqlx.DB, opts Options, logger *zap.Logger) error {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	var existing int
	if err := db.GetContext(ctx, &existing, `SELECT COUNT(*) FROM entities`); err != nil {
		return fmt.Errorf("inspect catalog: %w", err)
	}
	if existing > 0 {
		logger.Info("catalog already seeded, skipping")
		return ensureAdmin(ctx, db, opts, logger)
	}

	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin seed transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	for _, year := range []struct {
		year int
		name string
	}{
		{1, "1ère année"},
		{2, "2ème année"},
		{3, "3ème année"},
	} {
		if _, err := tx.ExecContext(ctx, `INSERT INTO academic_years (year, name) VALUES ($1, $2)`, year.year, year.name); err != nil {
			return fmt.Errorf("seed academic year: %w", err)
		}
	}

	for _, name := range []string{"Examen final", "Contrôle continu", "Rattrapage", "TD", "TP"} {
		if _, err := tx.ExecContext(ctx, `INSERT INTO document_types (name) VALUES ($1)`, name); err != nil {
			return fmt.Errorf("seed document type: %w", err)
		}
	}

	// Program ids are keyed by department and short name so the optional
	// sample documents can reference them without relying on insert order.
	programIDs := make(map[string]int)
	for _, entity := range catalog() {
		var entityID int
		if err := tx.GetContext(ctx, &entityID,
			`INSERT INTO entities (name, full_name, description) VALUES ($1, $2, $3) RETURNING id`,
			entity.name, entity.fullName, entity.description); err != nil {
			return fmt.Errorf("seed entity %s: %w", entity.name, err)
		}
		for _, department := range entity.departments {
			var departmentID int
			if err := tx.GetContext(ctx, &departmentID,
				`INSERT INTO departments (entity_id, name, full_name, description) VALUES ($1, $2, $3, $4) RETURNING id`,
				entityID, department.name, department.fullName, department.description); err != nil {
				return fmt.Errorf("seed department %s: %w", department.name, err)
			}
			for _, program := range department.programs {
				var programID int
				if err := tx.GetContext(ctx, &programID,
					`INSERT INTO programs (department_id, name, full_name, description, is_tronc_commun) VALUES ($1, $2, $3, $4, $5) RETURNING id`,
					departmentID, program.name, program.fullName, program.description, program.troncCommun); err != nil {
					return fmt.Errorf("seed program %s: %w", program.name, err)
				}
				programIDs[department.name+"/"+program.name] = programID
			}
		}
	}

	if opts.SampleDocuments {
		if err := seedSampleDocuments(ctx, tx, programIDs); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit seed transaction: %w", err)
	}
	logger.Info("catalog seeded")

	return ensureAdmin(ctx, db, opts, logger)
}

func seedSampleDocuments(ctx context.Context, tx *sqlx.Tx, programIDs map[string]int) error {
	now := time.Now().UTC()
	samples := []struct {
		title       string
		programKey  string
		yearID      int
		typeID      int
		filePath    string
		fileSize    int64
		year        int
		description string
	}{
		{
			title:       "Mathématiques Appliquées - Analyse Numérique",
			programKey:  "STI/MA",
			yearID:      2,
			typeID:      3,
			filePath:    "https://www.africau.edu/images/default/sample.pdf",
			fileSize:    3028,
			year:        2023,
			description: "Épreuve de rattrapage d'Analyse Numérique pour les étudiants de 2ème année de Mathématiques Appliquées",
		},
		{
			title:       "Programmation Orientée Objet - Java",
			programKey:  "GEI/IT",
			yearID:      1,
			typeID:      1,
			filePath:    "https://www.w3.org/WAI/ER/tests/xhtml/testfiles/resources/pdf/dummy.pdf",
			fileSize:    13264,
			year:        2023,
			description: "Examen final de Programmation Orientée Objet pour les étudiants de 1ère année d'Informatique",
		},
		{
			title:       "Comptabilité Générale - États Financiers",
			programKey:  "STAG/CG",
			yearID:      3,
			typeID:      2,
			filePath:    "https://www.orimi.com/pdf-test.pdf",
			fileSize:    502000,
			year:        2023,
			description: "Contrôle continu des États Financiers pour les étudiants de 3ème année de Comptabilité et Gestion",
		},
	}
	for _, sample := range samples {
		programID, ok := programIDs[sample.programKey]
		if !ok {
			return fmt.Errorf("seed document %q: unknown program %s", sample.title, sample.programKey)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO documents (title, program_id, academic_year_id, document_type_id, file_path, file_size, upload_date, year, description)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			sample.title, programID, sample.yearID, sample.typeID, sample.filePath, sample.fileSize, now, sample.year, sample.description); err != nil {
			return fmt.Errorf("seed document %q: %w", sample.title, err)
		}
	}
	return nil
}

func ensureAdmin(ctx context.Context, db *sqlx.DB, opts Options, logger *zap.Logger) error {
	if opts.AdminUsername == "" || opts.AdminPassword == "" {
		return nil
	}
	var count int
	if err := db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE username = $1`, opts.AdminUsername); err != nil {
		return fmt.Errorf("inspect users: %w", err)
	}
	if count > 0 {
		return nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(opts.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}
	name := opts.AdminName
	if name == "" {
		name = opts.AdminUsername
	}
	if _, err := db.ExecContext(ctx,
		`INSERT INTO users (username, password, name, role) VALUES ($1, $2, $3, 'admin')`,
		opts.AdminUsername, string(hash), name); err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	logger.Info("admin account created", zap.String("username", opts.AdminUsername))
	return nil
}
