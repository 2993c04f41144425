package plan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		input string
		want  int
	}{
		{"$100-500", 300},
		{"$500-1000", 750},
		{"$500-1,000", 750},
		{"$1000-2000", 1500},
		{"$1,000-2,000", 1500},
		{"more than $2000", 3000},
		{"more than $2,000", 3000},
		{"around 2500", 2500},
		{"$1,500 per month", 1500},
		{"1000", 1000},
		{"undefined", 5000},
		{"", 5000},
		{"no numbers here", 5000},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseAmount(tt.input), "input %q", tt.input)
	}
}

func TestParseAmountBucketBeatsDigits(t *testing.T) {
	// Bucket literals win even though the string contains digits.
	assert.Equal(t, 750, ParseAmount("I picked the $500-1000 range"))
}
