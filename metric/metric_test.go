package metric

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(f float64) *float64 { return &f }

func TestParse(t *testing.T) {
	tests := []struct {
		name string
		in   string
		p    *float64
		want Metric
		err  error
	}{
		{"default", "", nil, Cosine{}, nil},
		{"cosine", "Cosine", nil, Cosine{}, nil},
		{"jaccard", "jaccard", nil, Jaccard{}, nil},
		{"tanimoto alias", "tanimoto", nil, Jaccard{}, nil},
		{"generalized", "generalized", ptr(1.5), Generalized{P: 1.5}, nil},
		{"generalized ignores p for cosine", "cosine", ptr(3), Cosine{}, nil},
		{"generalized without p", "generalized", nil, nil, ErrMissingP},
		{"generalized zero p", "generalized", ptr(0), nil, ErrInvalidP},
		{"generalized nan p", "generalized", ptr(math.NaN()), nil, ErrInvalidP},
		{"unknown", "euclid", nil, nil, ErrUnknownMetric},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.in, tt.p)
			if tt.err != nil {
				require.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Validate(Cosine{}))
	assert.NoError(t, Validate(Jaccard{}))
	assert.NoError(t, Validate(Generalized{P: -1}))
	assert.ErrorIs(t, Validate(Generalized{}), ErrInvalidP)
	assert.ErrorIs(t, Validate(Generalized{P: math.Inf(1)}), ErrInvalidP)

	// Pointers satisfy the interface but are not metric values.
	assert.ErrorIs(t, Validate(&Cosine{}), ErrUnknownMetric)
	assert.ErrorIs(t, Validate(&Jaccard{}), ErrUnknownMetric)
	assert.ErrorIs(t, Validate(&Generalized{P: 2}), ErrUnknownMetric)
	assert.ErrorIs(t, Validate(&Generalized{P: 0}), ErrUnknownMetric)
}

func TestString(t *testing.T) {
	assert.Equal(t, "cosine", Cosine{}.String())
	assert.Equal(t, "jaccard", Jaccard{}.String())
	assert.Equal(t, "generalized(p=1.5)", Generalized{P: 1.5}.String())
}
