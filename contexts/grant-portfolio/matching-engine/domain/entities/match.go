package entities

import "time"

// AlignmentFactors is the explainability breakdown persisted with every
// match: both sub-scores, the raw overlap set, and the weights in force when
// the score was computed.
type AlignmentFactors struct {
	CategoricalOverlap float64  `json:"categorical_overlap"`
	SemanticSimilarity float64  `json:"semantic_similarity"`
	SharedTags         []string `json:"shared_tags"`
	CategoricalWeight  float64  `json:"categorical_weight"`
	SemanticWeight     float64  `json:"semantic_weight"`
}

// Match is a scored (organization, grant) pairing, unique per pair. Scores
// live in [0,100]. Recomputation overwrites score and factors but preserves
// UserViewed.
type Match struct {
	MatchID    string           `json:"match_id"`
	OrgID      string           `json:"org_id"`
	GrantID    string           `json:"grant_id"`
	Score      float64          `json:"score"`
	Factors    AlignmentFactors `json:"factors"`
	UserViewed bool             `json:"user_viewed"`
	MatchedAt  time.Time        `json:"matched_at"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

// OrgProfile is the slice of the organization record the matching engine
// consumes: declared focus tags plus the stored fit embedding. It is read
// through a directory port; this context never mutates it.
type OrgProfile struct {
	OrgID        string    `json:"org_id"`
	Name         string    `json:"name"`
	FocusTags    []string  `json:"focus_tags"`
	FitEmbedding []float32 `json:"fit_embedding,omitempty"`
}
