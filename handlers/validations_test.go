package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", Truncate("short", 64))
	assert.Equal(t, "abcd", Truncate("abcdefgh", 4))
	assert.Equal(t, "", Truncate("anything", 0))
	assert.Equal(t, "héll", Truncate("héllo wörld", 4))
}

func TestValidSlug(t *testing.T) {
	valid := []string{
		"auroras-studio",
		"kasper-live",
		"a",
		"band-101",
	}

	for _, slug := range valid {
		assert.True(t, ValidSlug(slug), slug)
	}

	invalid := []string{
		"",
		"-leading",
		"trailing-",
		"double--dash",
		"Upper",
		"with space",
		"under_score",
		"dots.here",
	}

	for _, slug := range invalid {
		assert.False(t, ValidSlug(slug), slug)
	}
}
