package services

import (
	"math"
	"sort"
	"strings"

	"grantstw/contexts/grant-portfolio/matching-engine/domain/entities"
)

// Weights controls the blend of the two alignment sub-scores. Both weights
// are fractions of 1; they are persisted into the factors of every match
// they produce.
type Weights struct {
	Categorical float64
	Semantic    float64
}

// DefaultWeights favors semantic similarity over declared tags.
func DefaultWeights() Weights {
	return Weights{Categorical: 0.4, Semantic: 0.6}
}

// Cosine returns the cosine similarity of two vectors clamped to [0,1].
// Mismatched lengths and zero vectors score 0.
func Cosine(a []float32, b []float32) float64 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	sim := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if sim < 0 {
		return 0
	}
	if sim > 1 {
		return 1
	}
	return sim
}

// CategoricalOverlap returns |org ∩ grant| / |grant| over case-insensitive
// tag sets, plus the shared tags in sorted order. A grant with no tags
// overlaps nothing.
func CategoricalOverlap(orgTags []string, grantTags []string) (float64, []string) {
	grantSet := tagSet(grantTags)
	if len(grantSet) == 0 {
		return 0, nil
	}
	orgSet := tagSet(orgTags)
	var shared []string
	for tag := range grantSet {
		if _, ok := orgSet[tag]; ok {
			shared = append(shared, tag)
		}
	}
	sort.Strings(shared)
	return float64(len(shared)) / float64(len(grantSet)), shared
}

// ScoreAlignment computes the 0-100 alignment score for an organization and
// a grant. The computation is pure: identical inputs always produce the
// identical score and factors.
func ScoreAlignment(org entities.OrgProfile, grant entities.Grant, weights Weights) (float64, entities.AlignmentFactors) {
	overlap, shared := CategoricalOverlap(org.FocusTags, grant.Tags)
	similarity := Cosine(org.FitEmbedding, grant.Embedding)

	score := 100 * (weights.Categorical*overlap + weights.Semantic*similarity)
	score = round2(score)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return score, entities.AlignmentFactors{
		CategoricalOverlap: round2(overlap),
		SemanticSimilarity: round2(similarity),
		SharedTags:         shared,
		CategoricalWeight:  weights.Categorical,
		SemanticWeight:     weights.Semantic,
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func tagSet(tags []string) map[string]struct{} {
	set := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		set[tag] = struct{}{}
	}
	return set
}
