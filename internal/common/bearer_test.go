package common

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
		ok     bool
	}{
		{name: "valid", header: "Bearer abc.def.ghi", want: "abc.def.ghi", ok: true},
		{name: "lowercase scheme", header: "bearer tok", want: "tok", ok: true},
		{name: "extra spaces", header: "  Bearer   tok  ", want: "tok", ok: true},
		{name: "empty", header: "", ok: false},
		{name: "scheme only", header: "Bearer", ok: false},
		{name: "scheme and blank", header: "Bearer    ", ok: false},
		{name: "basic scheme", header: "Basic dXNlcjpwYXNz", ok: false},
		{name: "raw token", header: "abc.def.ghi", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := BearerToken(tt.header)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBearerHeader_RoundTrip(t *testing.T) {
	tok, ok := BearerToken(BearerHeader("xyz"))
	assert.True(t, ok)
	assert.Equal(t, "xyz", tok)
}
