package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type body struct {
	Username string `json:"username" validate:"required,min=3,max=20"`
	Rating   int    `json:"rating" validate:"required,gte=1,lte=5"`
}

func TestMapValid(t *testing.T) {
	assert.Nil(t, Map(body{Username: "alice_01", Rating: 4}))
}

func TestMapReportsJSONFieldNames(t *testing.T) {
	errs := Map(body{Username: "ab", Rating: 9})
	assert.Equal(t, "must be at least 3 characters or greater", errs["username"])
	assert.Equal(t, "must be at most 5", errs["rating"])
}

func TestMapRequired(t *testing.T) {
	errs := Map(body{})
	assert.Equal(t, "is required", errs["username"])
	assert.Equal(t, "is required", errs["rating"])
}
