// Package retrieval assembles the bounded domain-context bundle for one
// advisory request: crop record, linked pests, and their advisories.
package retrieval

import (
	"fmt"

	"github.com/cropwise/advisor/internal/domain"
)

// DefaultPestLimit bounds how many pests are considered per request
const DefaultPestLimit = 200

// Store is the read-side of the crop/pest/advisory store
type Store interface {
	GetCropByName(name string) (*domain.Crop, error)
	ListPestsByCrop(cropID string, limit int) ([]domain.Pest, error)
	ListAdvisoriesByPests(pestIDs []string) ([]domain.Advisory, error)
}

// Retriever fetches and joins domain context for a crop
type Retriever struct {
	store Store
}

// NewRetriever creates a new retriever
func NewRetriever(store Store) *Retriever {
	return &Retriever{store: store}
}

// Retrieve builds the context bundle for a crop name. An unknown crop yields
// an empty bundle, not an error. Store failures are wrapped as
// domain.ErrRetrieval for the orchestrator to degrade on.
func (r *Retriever) Retrieve(cropName string, limit int) (*domain.ContextBundle, error) {
	bundle := &domain.ContextBundle{Pests: []domain.PestWithAdvisory{}}
	if cropName == "" {
		return bundle, nil
	}
	if limit <= 0 {
		limit = DefaultPestLimit
	}

	crop, err := r.store.GetCropByName(cropName)
	if err != nil {
		return bundle, fmt.Errorf("%w: crop lookup: %v", domain.ErrRetrieval, err)
	}
	if crop == nil {
		return bundle, nil
	}
	bundle.Crop = crop

	pests, err := r.store.ListPestsByCrop(crop.ID, limit)
	if err != nil {
		return bundle, fmt.Errorf("%w: pest lookup: %v", domain.ErrRetrieval, err)
	}
	if len(pests) == 0 {
		return bundle, nil
	}

	// One batch lookup for all advisories, then join by pest ID
	pestIDs := make([]string, len(pests))
	for i, p := range pests {
		pestIDs[i] = p.ID
	}
	advisories, err := r.store.ListAdvisoriesByPests(pestIDs)
	if err != nil {
		return bundle, fmt.Errorf("%w: advisory lookup: %v", domain.ErrRetrieval, err)
	}

	byPest := make(map[string]*domain.Advisory, len(advisories))
	for i := range advisories {
		if _, ok := byPest[advisories[i].PestID]; !ok {
			byPest[advisories[i].PestID] = &advisories[i]
		}
	}

	bundle.Pests = make([]domain.PestWithAdvisory, len(pests))
	for i, p := range pests {
		bundle.Pests[i] = domain.PestWithAdvisory{
			Pest:     p,
			Advisory: byPest[p.ID],
		}
	}

	return bundle, nil
}
