package ometiff

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
)

var uuidV4Pattern = regexp.MustCompile(`^[0-9a-f]{8}-[0-9a-f]{4}-4[0-9a-f]{3}-[89ab][0-9a-f]{3}-[0-9a-f]{12}$`)

func TestNewRandomUUIDMatchesV4Shape(t *testing.T) {
	for i := 0; i < 20; i++ {
		u := newRandomUUID()
		assert.Regexp(t, uuidV4Pattern, u)
	}
}

func TestNewRandomUUIDIsNotConstant(t *testing.T) {
	a := newRandomUUID()
	b := newRandomUUID()
	assert.NotEqual(t, a, b)
}
