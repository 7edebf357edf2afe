package scoring

import (
	"fmt"
	"math"
)

// weightSumEpsilon is the tolerance on the sum-to-one constraint.
const weightSumEpsilon = 1e-3

// Weights maps every category to its share of the overall score. A valid
// vector covers all five categories with non-negative values summing to
// 1.0 within weightSumEpsilon. Vectors are validated once at the input
// boundary and treated as immutable afterwards.
type Weights map[Category]float64

// DefaultWeights returns the standard vector: scalability dominates
// because sustaining the configured load matters more in production than
// raw speed under a lighter one.
func DefaultWeights() Weights {
	return Weights{
		Scalability: 0.35,
		Throughput:  0.25,
		Latency:     0.20,
		Reliability: 0.15,
		Consistency: 0.05,
	}
}

// InvalidWeightsError reports a weight vector that fails validation.
type InvalidWeightsError struct {
	Reason string
}

func (e *InvalidWeightsError) Error() string {
	return "invalid weights: " + e.Reason
}

// WeightsFromKeys converts an externally supplied name->weight mapping
// into the internal vector. The mapping replaces the defaults wholesale
// rather than patching them, so it must itself be complete. Unknown keys
// are rejected.
func WeightsFromKeys(external map[string]float64) (Weights, error) {
	w := make(Weights, len(external))
	for key, value := range external {
		c, err := ParseCategory(key)
		if err != nil {
			return nil, &InvalidWeightsError{Reason: err.Error()}
		}
		w[c] = value
	}
	if err := w.Validate(); err != nil {
		return nil, err
	}
	return w, nil
}

// Validate checks the vector against the constraints described on Weights.
func (w Weights) Validate() error {
	sum := 0.0
	for _, c := range Categories() {
		value, ok := w[c]
		if !ok {
			return &InvalidWeightsError{Reason: fmt.Sprintf("missing category %q", c)}
		}
		if value < 0 {
			return &InvalidWeightsError{Reason: fmt.Sprintf("negative weight %g for %q", value, c)}
		}
		sum += value
	}
	if len(w) != len(Categories()) {
		return &InvalidWeightsError{Reason: "vector carries keys outside the category set"}
	}
	if math.Abs(sum-1.0) > weightSumEpsilon {
		return &InvalidWeightsError{Reason: fmt.Sprintf("weights sum to %g, want 1.0", sum)}
	}
	return nil
}
