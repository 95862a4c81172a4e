package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameAsIgnoresCase(t *testing.T) {
	a := &JobPosting{Title: "Senior Actuary", Company: "MetLife", Location: "New York, NY"}
	b := &JobPosting{Title: "senior actuary", Company: "metlife", Location: "Remote"}
	c := &JobPosting{Title: "Senior Actuary", Company: "Prudential"}

	assert.True(t, a.SameAs(b))
	assert.False(t, a.SameAs(c))
}
