package service

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/cropwise/advisor/internal/domain"
	"github.com/cropwise/advisor/internal/repository"
	"go.uber.org/zap"
)

// SeedFile is the on-disk shape of the crop/pest/advisory seed data
type SeedFile struct {
	Crops []SeedCrop `json:"crops"`
}

// SeedCrop is one crop with its pests
type SeedCrop struct {
	Name           string     `json:"name"`
	ScientificName string     `json:"scientific_name,omitempty"`
	Season         string     `json:"season,omitempty"`
	Pests          []SeedPest `json:"pests,omitempty"`
}

// SeedPest is one pest with an optional advisory
type SeedPest struct {
	Name     string        `json:"name"`
	Type     string        `json:"type,omitempty"`
	Symptoms string        `json:"symptoms,omitempty"`
	Severity string        `json:"severity,omitempty"`
	Advisory *SeedAdvisory `json:"advisory,omitempty"`
}

// SeedAdvisory is the advisory attached to a seed pest
type SeedAdvisory struct {
	Prevention  string `json:"prevention,omitempty"`
	Biological  string `json:"biological,omitempty"`
	Chemical    string `json:"chemical,omitempty"`
	SafetyNotes string `json:"safety_notes,omitempty"`
}

// SeedService loads the crop/pest/advisory reference data into the store
type SeedService struct {
	crops  *repository.CropRepository
	logger *zap.Logger
}

// NewSeedService creates a new seed service
func NewSeedService(crops *repository.CropRepository, logger *zap.Logger) *SeedService {
	return &SeedService{crops: crops, logger: logger}
}

// LoadFile seeds the store from a JSON file. A store that already holds
// crops is left untouched.
func (s *SeedService) LoadFile(path string) error {
	count, err := s.crops.CountCrops()
	if err != nil {
		return fmt.Errorf("failed to check existing crops: %w", err)
	}
	if count > 0 {
		s.logger.Info("seed skipped, store already populated", zap.Int("crops", count))
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	var seed SeedFile
	if err := json.Unmarshal(data, &seed); err != nil {
		return fmt.Errorf("failed to parse seed file: %w", err)
	}

	return s.Load(&seed)
}

// Load inserts the seed records
func (s *SeedService) Load(seed *SeedFile) error {
	pests := 0
	for _, sc := range seed.Crops {
		crop := &domain.Crop{
			Name:           sc.Name,
			ScientificName: sc.ScientificName,
			Season:         sc.Season,
		}
		if err := s.crops.CreateCrop(crop); err != nil {
			return fmt.Errorf("failed to seed crop %q: %w", sc.Name, err)
		}

		for _, sp := range sc.Pests {
			pest := &domain.Pest{
				CropID:   crop.ID,
				Name:     sp.Name,
				Type:     sp.Type,
				Symptoms: sp.Symptoms,
				Severity: sp.Severity,
			}
			if err := s.crops.CreatePest(pest); err != nil {
				return fmt.Errorf("failed to seed pest %q: %w", sp.Name, err)
			}
			pests++

			if sp.Advisory != nil {
				advisory := &domain.Advisory{
					PestID:      pest.ID,
					Prevention:  sp.Advisory.Prevention,
					Biological:  sp.Advisory.Biological,
					Chemical:    sp.Advisory.Chemical,
					SafetyNotes: sp.Advisory.SafetyNotes,
				}
				if err := s.crops.CreateAdvisory(advisory); err != nil {
					return fmt.Errorf("failed to seed advisory for %q: %w", sp.Name, err)
				}
			}
		}
	}

	s.logger.Info("seed data loaded", zap.Int("crops", len(seed.Crops)), zap.Int("pests", pests))
	return nil
}
