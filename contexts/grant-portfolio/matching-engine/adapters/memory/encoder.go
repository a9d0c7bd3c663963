package memory

import (
	"context"
	"hash/fnv"
	"math"
	"strings"
)

// HashingEncoder is a deterministic text embedder: tokens are hashed into a
// fixed number of buckets and the bucket counts are L2-normalized. It stands
// in for an external embedding model in tests and local wiring; the same
// text always produces the same vector.
type HashingEncoder struct {
	Dim int
}

func (e HashingEncoder) Embed(_ context.Context, text string) ([]float32, error) {
	dim := e.Dim
	if dim <= 0 {
		dim = 64
	}

	vector := make([]float32, dim)
	for _, token := range strings.Fields(strings.ToLower(text)) {
		token = strings.Trim(token, ".,;:!?()[]\"'")
		if token == "" {
			continue
		}
		h := fnv.New32a()
		_, _ = h.Write([]byte(token))
		vector[h.Sum32()%uint32(dim)]++
	}

	var norm float64
	for _, v := range vector {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		scale := float32(1 / math.Sqrt(norm))
		for i := range vector {
			vector[i] *= scale
		}
	}
	return vector, nil
}
