package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nhle/notionmail/internal/command"
)

func TestClean(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"already clean", "tristan", "tristan"},
		{"capitalized", "TrIsTAn", "tristan"},
		{"surrounding whitespace", "  AbC ", "abc"},
		{"inner whitespace kept", "  TrI  sTAn     ", "tri  stan"},
		{"tabs and newlines", "\tHank\n", "hank"},
		{"empty", "", ""},
		{"whitespace only", "   \t ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Clean(tt.in)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got, Clean(got), "Clean must be idempotent")
		})
	}
}

func TestIsValidCommand(t *testing.T) {
	for _, c := range command.All {
		assert.True(t, IsValidCommand(string(c)), c)
		assert.True(t, IsValidCommand("  "+string(c)+" "), c)
	}

	valid := map[string]bool{
		"  ReAd  ":             true,
		"EXIT":                 true,
		"":                     false,
		"   ":                  false,
		"InValiD CommAnd":      false,
		"sen d":                false,
		"exit now":             false,
		command.InvalidMessage: false,
	}
	for in, want := range valid {
		assert.Equal(t, want, IsValidCommand(in), "%q", in)
	}
}

func TestValidateCommand(t *testing.T) {
	assert.NoError(t, ValidateCommand(" Delete"))

	err := ValidateCommand("remove")
	assert.ErrorIs(t, err, ErrInvalidCommand)
	assert.Equal(t, "Please enter a valid command send,read,help,delete,exit", err.Error())
}
