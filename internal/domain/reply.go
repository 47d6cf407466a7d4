package domain

// LikelyCause is one candidate diagnosis with a confidence in [0,1]
type LikelyCause struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// ReplyMetadata holds the auxiliary lists of a structured reply.
// All fields are present-but-empty rather than absent.
type ReplyMetadata struct {
	LikelyCauses      []LikelyCause `json:"likely_causes"`
	Actions           []string      `json:"actions"`
	Warnings          []string      `json:"warnings"`
	FollowUpQuestions []string      `json:"follow_up_questions"`
}

// StructuredReply is the typed result extracted from raw generation output
type StructuredReply struct {
	Reply             string        `json:"reply"`
	LikelyCauses      []LikelyCause `json:"likely_causes"`
	Actions           []string      `json:"actions"`
	Warnings          []string      `json:"warnings"`
	FollowUpQuestions []string      `json:"follow_up_questions"`
}

// Metadata returns the auxiliary lists of the reply, never nil
func (r *StructuredReply) Metadata() *ReplyMetadata {
	return &ReplyMetadata{
		LikelyCauses:      r.LikelyCauses,
		Actions:           r.Actions,
		Warnings:          r.Warnings,
		FollowUpQuestions: r.FollowUpQuestions,
	}
}

// Normalize replaces nil lists with empty ones and clamps confidence
// values into [0,1]
func (r *StructuredReply) Normalize() {
	if r.LikelyCauses == nil {
		r.LikelyCauses = []LikelyCause{}
	}
	if r.Actions == nil {
		r.Actions = []string{}
	}
	if r.Warnings == nil {
		r.Warnings = []string{}
	}
	if r.FollowUpQuestions == nil {
		r.FollowUpQuestions = []string{}
	}
	for i := range r.LikelyCauses {
		if r.LikelyCauses[i].Confidence < 0 {
			r.LikelyCauses[i].Confidence = 0
		}
		if r.LikelyCauses[i].Confidence > 1 {
			r.LikelyCauses[i].Confidence = 1
		}
	}
}

// PestIdentification is the typed result of the image-identify endpoint
type PestIdentification struct {
	Pest            string   `json:"pest"`
	ScientificName  string   `json:"scientific_name"`
	Confidence      float64  `json:"confidence"`
	Description     string   `json:"description"`
	Recommendations []string `json:"recommendations"`
}

// Normalize replaces nil lists with empty ones and clamps confidence into [0,1]
func (p *PestIdentification) Normalize() {
	if p.Recommendations == nil {
		p.Recommendations = []string{}
	}
	if p.Confidence < 0 {
		p.Confidence = 0
	}
	if p.Confidence > 1 {
		p.Confidence = 1
	}
}

// AdvisoryDraft is the typed result of the advisory-generation endpoint,
// ordered least to most invasive per IPM
type AdvisoryDraft struct {
	Overview       string   `json:"overview"`
	Prevention     []string `json:"prevention"`
	Mechanical     []string `json:"mechanical"`
	Biological     []string `json:"biological"`
	Chemical       []string `json:"chemical"`
	SafetyWarnings []string `json:"safety_warnings"`
}

// Normalize replaces nil lists with empty ones
func (a *AdvisoryDraft) Normalize() {
	if a.Prevention == nil {
		a.Prevention = []string{}
	}
	if a.Mechanical == nil {
		a.Mechanical = []string{}
	}
	if a.Biological == nil {
		a.Biological = []string{}
	}
	if a.Chemical == nil {
		a.Chemical = []string{}
	}
	if a.SafetyWarnings == nil {
		a.SafetyWarnings = []string{}
	}
}

// SymptomCheckRequest is the request for the single-shot symptom checker
type SymptomCheckRequest struct {
	Crop     string `json:"crop" binding:"required"`
	Symptoms string `json:"symptoms" binding:"required"`
	Location string `json:"location,omitempty"`
	Language string `json:"language,omitempty"`
}

// IdentifyRequest is the request for image-based pest identification.
// Image is a data URL or a fetchable HTTPS URL.
type IdentifyRequest struct {
	Image string `json:"image" binding:"required"`
	Crop  string `json:"crop,omitempty"`
	Notes string `json:"notes,omitempty"`
}

// AdvisoryGenerateRequest is the request to draft a full advisory
type AdvisoryGenerateRequest struct {
	Crop     string `json:"crop" binding:"required"`
	Pest     string `json:"pest" binding:"required"`
	Language string `json:"language,omitempty"`
}
