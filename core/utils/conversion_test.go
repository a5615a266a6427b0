package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestToInt64(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want int64
		ok   bool
	}{
		{"int", 12, 12, true},
		{"whole float", float64(12), 12, true},
		{"fractional float", 12.5, 0, false},
		{"numeric string", " 0042 ", 42, true},
		{"json number", json.Number("7"), 7, true},
		{"word", "abc", 0, false},
		{"nil", nil, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToInt64(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToString(t *testing.T) {
	assert.Equal(t, "12", ToString(float64(12)))
	assert.Equal(t, "1.5", ToString(1.5))
	assert.Equal(t, "tt1", ToString(" tt1 "))
	assert.Equal(t, "", ToString(nil))
}

func TestToBool(t *testing.T) {
	v, ok := ToBool(float64(1))
	assert.True(t, ok)
	assert.True(t, v)

	v, ok = ToBool("0")
	assert.True(t, ok)
	assert.False(t, v)

	_, ok = ToBool(2)
	assert.False(t, ok)

	_, ok = ToBool("yes")
	assert.False(t, ok)
}
