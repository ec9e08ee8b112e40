package strings

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitList(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty", "", nil},
		{"blanks only", " , ,", nil},
		{"single", "broker-1:9092", []string{"broker-1:9092"}},
		{"trims", " a:1 ,b:2 ", []string{"a:1", "b:2"}},
		{"drops repeats keeping first order", "b,a,b,c,a", []string{"b", "a", "c"}},
		{"case sensitive", "A,a", []string{"A", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitList(tt.input, ","))
		})
	}
}
