package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusOf(t *testing.T) {
	conflict := New(http.StatusConflict, "time slot already booked")

	assert.Equal(t, http.StatusConflict, StatusOf(conflict))
	assert.Equal(t, http.StatusConflict, StatusOf(fmt.Errorf("create: %w", conflict)))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(errors.New("boom")))
}

func TestWrapKeepsCause(t *testing.T) {
	cause := errors.New("connection reset")
	err := Wrap(cause, http.StatusBadGateway, "upstream failed")

	assert.Equal(t, "upstream failed", err.Error())
	assert.ErrorIs(t, err, cause)
}
