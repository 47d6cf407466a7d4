package repository

import (
	"database/sql"
	"strings"
	"time"

	"github.com/cropwise/advisor/internal/domain"
	"github.com/google/uuid"
)

// CropRepository handles crop, pest and advisory persistence
type CropRepository struct {
	db *DB
}

// NewCropRepository creates a new crop repository
func NewCropRepository(db *DB) *CropRepository {
	return &CropRepository{db: db}
}

// CreateCrop creates a new crop
func (r *CropRepository) CreateCrop(crop *domain.Crop) error {
	if crop.ID == "" {
		crop.ID = uuid.New().String()
	}
	crop.CreatedAt = time.Now()

	_, err := r.db.Exec(`
		INSERT INTO crops (id, name, scientific_name, season, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, crop.ID, crop.Name, crop.ScientificName, crop.Season, crop.CreatedAt)

	return err
}

// GetCropByName retrieves a crop by case-insensitive name match.
// Returns nil without error when no crop matches.
func (r *CropRepository) GetCropByName(name string) (*domain.Crop, error) {
	crop := &domain.Crop{}
	var scientificName, season sql.NullString

	err := r.db.QueryRow(`
		SELECT id, name, scientific_name, season, created_at
		FROM crops WHERE LOWER(name) = LOWER(?)
	`, strings.TrimSpace(name)).Scan(&crop.ID, &crop.Name, &scientificName,
		&season, &crop.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	crop.ScientificName = scientificName.String
	crop.Season = season.String

	return crop, nil
}

// CreatePest creates a new pest
func (r *CropRepository) CreatePest(pest *domain.Pest) error {
	if pest.ID == "" {
		pest.ID = uuid.New().String()
	}
	pest.CreatedAt = time.Now()

	_, err := r.db.Exec(`
		INSERT INTO pests (id, crop_id, name, type, symptoms, severity, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, pest.ID, pest.CropID, pest.Name, pest.Type, pest.Symptoms, pest.Severity,
		pest.CreatedAt)

	return err
}

// ListPestsByCrop retrieves pests linked to a crop, bounded by limit
func (r *CropRepository) ListPestsByCrop(cropID string, limit int) ([]domain.Pest, error) {
	rows, err := r.db.Query(`
		SELECT id, crop_id, name, type, symptoms, severity, created_at
		FROM pests WHERE crop_id = ?
		ORDER BY name ASC LIMIT ?
	`, cropID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pests []domain.Pest
	for rows.Next() {
		pest := domain.Pest{}
		var pestType, symptoms, severity sql.NullString

		if err := rows.Scan(&pest.ID, &pest.CropID, &pest.Name, &pestType,
			&symptoms, &severity, &pest.CreatedAt); err != nil {
			return nil, err
		}

		pest.Type = pestType.String
		pest.Symptoms = symptoms.String
		pest.Severity = severity.String
		pests = append(pests, pest)
	}

	return pests, rows.Err()
}

// CreateAdvisory creates a new advisory
func (r *CropRepository) CreateAdvisory(advisory *domain.Advisory) error {
	if advisory.ID == "" {
		advisory.ID = uuid.New().String()
	}
	advisory.CreatedAt = time.Now()

	_, err := r.db.Exec(`
		INSERT INTO advisories (id, pest_id, prevention, biological, chemical, safety_notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, advisory.ID, advisory.PestID, advisory.Prevention, advisory.Biological,
		advisory.Chemical, advisory.SafetyNotes, advisory.CreatedAt)

	return err
}

// ListAdvisoriesByPests retrieves advisories for a batch of pest IDs in a
// single query
func (r *CropRepository) ListAdvisoriesByPests(pestIDs []string) ([]domain.Advisory, error) {
	if len(pestIDs) == 0 {
		return nil, nil
	}

	placeholders := strings.Repeat("?,", len(pestIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(pestIDs))
	for i, id := range pestIDs {
		args[i] = id
	}

	rows, err := r.db.Query(`
		SELECT id, pest_id, prevention, biological, chemical, safety_notes, created_at
		FROM advisories WHERE pest_id IN (`+placeholders+`)
	`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var advisories []domain.Advisory
	for rows.Next() {
		advisory := domain.Advisory{}
		var prevention, biological, chemical, safetyNotes sql.NullString

		if err := rows.Scan(&advisory.ID, &advisory.PestID, &prevention,
			&biological, &chemical, &safetyNotes, &advisory.CreatedAt); err != nil {
			return nil, err
		}

		advisory.Prevention = prevention.String
		advisory.Biological = biological.String
		advisory.Chemical = chemical.String
		advisory.SafetyNotes = safetyNotes.String
		advisories = append(advisories, advisory)
	}

	return advisories, rows.Err()
}

// CountCrops returns the total number of crops
func (r *CropRepository) CountCrops() (int, error) {
	var count int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM crops`).Scan(&count)
	return count, err
}
