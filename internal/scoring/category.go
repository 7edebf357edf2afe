// Package scoring normalizes derived metrics onto a common 0-100 scale
// and combines them into a weighted overall score.
//
// Normalization is relative min-max scaling across the comparison set: a
// backend's category score depends on every other backend in the set, so
// scores computed for one set are meaningless for another. This makes the
// tool a relative comparator, not an absolute benchmark grader; in a
// two-backend comparison each category produces one 0 and one 100 unless
// the backends tie.
package scoring

import "fmt"

// Category is one scored dimension of performance. The set is closed;
// external weight keys are validated against it once at the boundary.
type Category int

const (
	Throughput Category = iota
	Latency
	Reliability
	Consistency
	Scalability
)

// Categories lists every category in canonical order. Iteration over this
// slice (never over maps) keeps score arithmetic deterministic.
func Categories() []Category {
	return []Category{Throughput, Latency, Reliability, Consistency, Scalability}
}

// HigherIsBetter reports the scoring direction of the category's raw
// metric. Latency, failure rate and variability improve downwards.
func (c Category) HigherIsBetter() bool {
	return c == Throughput || c == Scalability
}

func (c Category) String() string {
	switch c {
	case Throughput:
		return "throughput"
	case Latency:
		return "latency"
	case Reliability:
		return "reliability"
	case Consistency:
		return "consistency"
	case Scalability:
		return "scalability"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// MarshalText lets Category serve as a JSON map key.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

// UnmarshalText parses the external spelling of a category name.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ParseCategory converts an external key into the internal enumeration.
func ParseCategory(s string) (Category, error) {
	for _, c := range Categories() {
		if c.String() == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}
