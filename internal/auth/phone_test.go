package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1234567890", "1234567890"},
		{"123 456 7890", "1234567890"},
		{"+1 (234) 567-890", "1234567890"},
		{"abc", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizePhone(tt.in), "input %q", tt.in)
	}
}

func TestNormalizePhoneIdempotent(t *testing.T) {
	once := NormalizePhone("123 456 7890")
	assert.Equal(t, once, NormalizePhone(once))
}

func TestValidPhone(t *testing.T) {
	assert.False(t, ValidPhone("123456789"), "9 digits is too short")
	assert.True(t, ValidPhone("1234567890"))
	assert.True(t, ValidPhone("123456789012345"))
	assert.False(t, ValidPhone("1234567890123456"), "16 digits is too long")
	assert.False(t, ValidPhone(""))
}
