// Package metric defines the normalized similarity metrics a self-corpus
// query can rank by.
//
// Metric is a closed sum type: Cosine, Jaccard or Generalized. Only
// Generalized carries a parameter, so a "missing p" can only arise when a
// metric is parsed from strings (see Parse).
package metric

import (
	"errors"
	"fmt"
	"math"
	"strings"
)

var (
	// ErrMissingP is returned when the generalized metric is requested without p.
	ErrMissingP = errors.New("metric: generalized metric requires p")
	// ErrInvalidP is returned when p is zero, NaN or infinite.
	ErrInvalidP = errors.New("metric: p must be finite and non-zero")
	// ErrUnknownMetric is returned by Parse for unrecognized names.
	ErrUnknownMetric = errors.New("metric: unknown metric")
)

// Metric is one of Cosine, Jaccard or Generalized.
type Metric interface {
	fmt.Stringer
	metric()
}

// Cosine scores d / (|q|·|c|). NaN scores (zero norms) become 0.
type Cosine struct{}

// Jaccard is the Tanimoto coefficient d / (|c|² + |q|² − d).
// It has no NaN guard: degenerate rows score NaN or ±Inf.
type Jaccard struct{}

// Generalized is the popularity-weighted metric d / (|q|·|c|)^(2/P).
// P = 2 is cosine; P = 1 is the lift variant. Larger P favors large-norm rows.
// NaN scores become 0.
type Generalized struct {
	P float64
}

func (Cosine) metric()      {}
func (Jaccard) metric()     {}
func (Generalized) metric() {}

func (Cosine) String() string  { return "cosine" }
func (Jaccard) String() string { return "jaccard" }

func (g Generalized) String() string {
	return fmt.Sprintf("generalized(p=%g)", g.P)
}

// Validate checks that m is one of the metric values and that its parameters
// are usable. Pointers to metrics are rejected.
func Validate(m Metric) error {
	switch m := m.(type) {
	case Cosine, Jaccard:
		return nil
	case Generalized:
		if m.P == 0 || math.IsNaN(m.P) || math.IsInf(m.P, 0) {
			return fmt.Errorf("%w: got %v", ErrInvalidP, m.P)
		}
		return nil
	default:
		return fmt.Errorf("%w: %T", ErrUnknownMetric, m)
	}
}

// Parse resolves a metric by name ("cosine", "jaccard", "generalized").
// p is only consulted for "generalized", where it is mandatory.
func Parse(name string, p *float64) (Metric, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "cosine":
		return Cosine{}, nil
	case "jaccard", "tanimoto":
		return Jaccard{}, nil
	case "generalized":
		if p == nil {
			return nil, ErrMissingP
		}
		g := Generalized{P: *p}
		if err := Validate(g); err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMetric, name)
	}
}
