package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestValidateYear(t *testing.T) {
	current := time.Now().Year()

	assert.NoError(t, ValidateYear(current))
	assert.NoError(t, ValidateYear(1888))
	assert.ErrorIs(t, ValidateYear(current+1), ErrYearInFuture)
}
