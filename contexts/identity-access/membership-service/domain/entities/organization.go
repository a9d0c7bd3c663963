package entities

import "time"

// FitProfile is the semantic summary used by the matching engine. The
// embedding is produced by the external encoder; this service only stores it.
type FitProfile struct {
	Summary   string    `json:"summary"`
	Embedding []float32 `json:"embedding,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VoiceProfile captures tone attributes applied to generated draft text.
type VoiceProfile struct {
	Tone      string    `json:"tone"`
	Embedding []float32 `json:"embedding,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Organization is the tenant boundary. After creation it always has at least
// one active owner membership.
type Organization struct {
	OrgID        string       `json:"org_id"`
	RegistryKey  string       `json:"registry_key"`
	Name         string       `json:"name"`
	Region       string       `json:"region"`
	Mission      string       `json:"mission"`
	FocusTags    []string     `json:"focus_tags"`
	AnnualBudget string       `json:"annual_budget,omitempty"`
	Fit          FitProfile   `json:"fit"`
	Voice        VoiceProfile `json:"voice"`
	CreatedBy    string       `json:"created_by"`
	CreatedAt    time.Time    `json:"created_at"`
	UpdatedAt    time.Time    `json:"updated_at"`
}
