package notice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSegment(t *testing.T) {
	t.Run("no anchors", func(t *testing.T) {
		got := Segment("Legal notices for the week of March 3, 2025.")
		require.NotNil(t, got)
		assert.Empty(t, got)
		assert.Empty(t, Segment(""))
	})

	t.Run("preamble dropped and anchor canonicalized", func(t *testing.T) {
		stream := "Legal Notices 1) A B, (mortgage Foreclosure) first notice. 2) C D (Mortgage Foreclosure) second notice."
		got := Segment(stream)
		assert.Equal(t, []string{
			"(Mortgage Foreclosure)first notice. 2) C D",
			"(Mortgage Foreclosure)second notice.",
		}, got)
	})

	t.Run("only the M is case-insensitive", func(t *testing.T) {
		assert.Empty(t, Segment("x (Mortgage foreclosure) y"))
		assert.Empty(t, Segment("x (MORTGAGE Foreclosure) y"))
		assert.Empty(t, Segment("x Mortgage Foreclosure y"))
		assert.Len(t, Segment("x (mortgage Foreclosure) y"), 1)
	})

	t.Run("adjacent anchors yield a bare anchor segment", func(t *testing.T) {
		got := Segment("(Mortgage Foreclosure)(Mortgage Foreclosure) tail")
		assert.Equal(t, []string{"(Mortgage Foreclosure)", "(Mortgage Foreclosure)tail"}, got)
	})
}

func TestCountAnchors(t *testing.T) {
	assert.Equal(t, 0, CountAnchors("nothing here"))
	assert.Equal(t, 2, CountAnchors("a (Mortgage Foreclosure) b (mortgage Foreclosure) c"))
}

func TestExtractNames(t *testing.T) {
	tests := []struct {
		name   string
		stream string
		want   []string
	}{
		{
			name:   "enumeration and trailing comma stripped",
			stream: "1) John Q. Smith, (Mortgage Foreclosure) body text",
			want:   []string{"John Q. Smith"},
		},
		{
			name:   "comma directly against the anchor",
			stream: "1) John Q. Smith,(Mortgage Foreclosure) body",
			want:   []string{"John Q. Smith"},
		},
		{
			name:   "lowercase m",
			stream: "Jane Roe (mortgage Foreclosure) body",
			want:   []string{"Jane Roe"},
		},
		{
			name:   "several notices in order",
			stream: "1) John Smith, (Mortgage Foreclosure) Sale on March 3, 2025; 2) Jane Roe, (Mortgage Foreclosure) more.",
			want:   []string{"John Smith", "Jane Roe"},
		},
		{
			name:   "non-ascii letters",
			stream: "3) José Núñez, (Mortgage Foreclosure) body",
			want:   []string{"José Núñez"},
		},
		{
			name:   "parenthesized alias kept",
			stream: "4) Mary (Molly) Brown, (Mortgage Foreclosure) body",
			want:   []string{"Mary (Molly) Brown"},
		},
		{
			name:   "anchor without a preceding name",
			stream: "(Mortgage Foreclosure) body",
			want:   []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractNames(tt.stream))
		})
	}
}
