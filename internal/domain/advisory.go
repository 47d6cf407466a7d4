package domain

import "time"

// Crop represents a crop record
type Crop struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	ScientificName string    `json:"scientific_name,omitempty"`
	Season         string    `json:"season,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// Pest represents a pest or disease linked to a crop
type Pest struct {
	ID        string    `json:"id"`
	CropID    string    `json:"crop_id"`
	Name      string    `json:"name"`
	Type      string    `json:"type,omitempty"` // insect, fungus, virus, ...
	Symptoms  string    `json:"symptoms,omitempty"`
	Severity  string    `json:"severity,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Advisory represents treatment guidance for a pest
type Advisory struct {
	ID          string    `json:"id"`
	PestID      string    `json:"pest_id"`
	Prevention  string    `json:"prevention,omitempty"`
	Biological  string    `json:"biological,omitempty"`
	Chemical    string    `json:"chemical,omitempty"`
	SafetyNotes string    `json:"safety_notes,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// PestWithAdvisory joins a pest to at most one advisory by pest ID.
// Advisory is nil when no advisory record exists for the pest.
type PestWithAdvisory struct {
	Pest     Pest      `json:"pest"`
	Advisory *Advisory `json:"advisory,omitempty"`
}

// ContextBundle is the request-scoped set of domain records assembled for
// one generation request. Never persisted.
type ContextBundle struct {
	Crop  *Crop              `json:"crop,omitempty"`
	Pests []PestWithAdvisory `json:"pests"`
}

// Empty reports whether the bundle carries no domain context
func (b *ContextBundle) Empty() bool {
	return b == nil || (b.Crop == nil && len(b.Pests) == 0)
}
