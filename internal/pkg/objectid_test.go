package pkg

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewID_IsValid(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		assert.Len(t, id, 24)
		assert.True(t, IsValidID(id))
		assert.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestIsValidID(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{"lowercase hex", "507f1f77bcf86cd799439011", true},
		{"uppercase hex", "507F1F77BCF86CD799439011", true},
		{"empty", "", false},
		{"too short", "507f1f77bcf86cd79943901", false},
		{"too long", "507f1f77bcf86cd7994390111", false},
		{"non hex", "zzzf1f77bcf86cd799439011", false},
		{"whitespace", " 07f1f77bcf86cd799439011", false},
		{"twelve raw bytes", strings.Repeat("a", 12), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidID(tt.in))
		})
	}
}
