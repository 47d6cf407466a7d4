package retrieval

import (
	"errors"
	"testing"

	"github.com/cropwise/advisor/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct {
	crop       *domain.Crop
	pests      []domain.Pest
	advisories []domain.Advisory

	cropErr     error
	pestErr     error
	advisoryErr error

	gotLimit   int
	gotPestIDs []string
}

func (f *fakeStore) GetCropByName(name string) (*domain.Crop, error) {
	return f.crop, f.cropErr
}

func (f *fakeStore) ListPestsByCrop(cropID string, limit int) ([]domain.Pest, error) {
	f.gotLimit = limit
	return f.pests, f.pestErr
}

func (f *fakeStore) ListAdvisoriesByPests(pestIDs []string) ([]domain.Advisory, error) {
	f.gotPestIDs = pestIDs
	return f.advisories, f.advisoryErr
}

func TestRetrieveJoinsPestsWithAdvisories(t *testing.T) {
	store := &fakeStore{
		crop: &domain.Crop{ID: "c1", Name: "Wheat"},
		pests: []domain.Pest{
			{ID: "p1", CropID: "c1", Name: "Aphid"},
			{ID: "p2", CropID: "c1", Name: "Rust"},
		},
		advisories: []domain.Advisory{
			{ID: "a1", PestID: "p1", Prevention: "rotate crops"},
		},
	}

	bundle, err := NewRetriever(store).Retrieve("wheat", 0)
	require.NoError(t, err)
	require.NotNil(t, bundle.Crop)

	require.Len(t, bundle.Pests, 2)
	require.NotNil(t, bundle.Pests[0].Advisory)
	assert.Equal(t, "rotate crops", bundle.Pests[0].Advisory.Prevention)
	// absence of an advisory is an explicit nil, the pest is still present
	assert.Nil(t, bundle.Pests[1].Advisory)

	// advisories were fetched in one batch keyed by pest IDs
	assert.Equal(t, []string{"p1", "p2"}, store.gotPestIDs)
	assert.Equal(t, DefaultPestLimit, store.gotLimit)
}

func TestRetrieveUnknownCrop(t *testing.T) {
	bundle, err := NewRetriever(&fakeStore{}).Retrieve("Nonexistent Crop", 10)

	// absence of domain data is not an error
	require.NoError(t, err)
	assert.True(t, bundle.Empty())
	assert.NotNil(t, bundle.Pests)
}

func TestRetrieveEmptyCropName(t *testing.T) {
	store := &fakeStore{crop: &domain.Crop{ID: "c1", Name: "Wheat"}}
	bundle, err := NewRetriever(store).Retrieve("", 10)

	require.NoError(t, err)
	assert.True(t, bundle.Empty())
}

func TestRetrieveStoreErrors(t *testing.T) {
	tests := []struct {
		name  string
		store *fakeStore
	}{
		{name: "crop lookup fails", store: &fakeStore{cropErr: errors.New("db closed")}},
		{
			name: "pest lookup fails",
			store: &fakeStore{
				crop:    &domain.Crop{ID: "c1", Name: "Wheat"},
				pestErr: errors.New("db closed"),
			},
		},
		{
			name: "advisory lookup fails",
			store: &fakeStore{
				crop:        &domain.Crop{ID: "c1", Name: "Wheat"},
				pests:       []domain.Pest{{ID: "p1", CropID: "c1", Name: "Aphid"}},
				advisoryErr: errors.New("db closed"),
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle, err := NewRetriever(tt.store).Retrieve("Wheat", 10)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrRetrieval))
			// a usable (possibly partial) bundle is still returned
			require.NotNil(t, bundle)
		})
	}
}

func TestRetrieveCustomLimit(t *testing.T) {
	store := &fakeStore{crop: &domain.Crop{ID: "c1", Name: "Maize"}}
	_, err := NewRetriever(store).Retrieve("Maize", 5)
	require.NoError(t, err)
	assert.Equal(t, 5, store.gotLimit)
}
