package pax

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{" Jim O'Brien  ", "jim-obrien"},
		{"Jane Doe (Sec.)", "jane-doe-sec"},
		{"A  -  B", "a-b"},
		{"- leading and trailing -", "leading-and-trailing"},
		{"José", "jos"},
		{"Agent 007", "agent-007"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}

func TestUnslugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"hello-world", "Hello World"},
		{"jim--obrien", "Jim Obrien"},
		{" jane-doe-sec ", "Jane Doe Sec"},
		{"-x-", "X"},
		{"agent-007", "Agent 007"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Unslugify(tt.input))
		})
	}
}

func TestSlugCollision(t *testing.T) {
	assert.Equal(t, Slugify("Jose"), Slugify("Jose!"))
	assert.NotEqual(t, Slugify("Jose"), Slugify("José"))
}
