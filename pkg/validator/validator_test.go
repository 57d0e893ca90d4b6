package validator

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Title  string   `json:"title" validate:"required,max=5"`
	Mail   string   `json:"mail,omitempty" validate:"required,email"`
	Picks  []string `json:"picks" validate:"required,min=1,max=2,unique,dive,workshop"`
	Hidden string   `json:"-" validate:"required"`
}

func TestFieldsUsesJSONNamesAndMessages(t *testing.T) {
	got := Fields(context.Background(), sample{Hidden: "x"}, Messages{
		"title": "Title is required",
		"picks": "Pick something",
	})

	assert.Equal(t, map[string]string{
		"title": "Title is required",
		"mail":  ErrFieldRequired,
		"picks": "Pick something",
	}, got)
}

func TestFieldsTagSpecificMessage(t *testing.T) {
	s := sample{Title: "ok", Mail: "a@b.com", Picks: []string{"embedded", "game", "fashion"}, Hidden: "x"}
	got := Fields(context.Background(), s, Messages{
		"picks":     "Pick something",
		"picks.max": "Too many",
	})
	assert.Equal(t, map[string]string{"picks": "Too many"}, got)
}

func TestFieldsStripsDiveIndex(t *testing.T) {
	s := sample{Title: "ok", Mail: "a@b.com", Picks: []string{"embedded", "pottery"}, Hidden: "x"}
	got := Fields(context.Background(), s, nil)
	assert.Equal(t, map[string]string{"picks": ErrFieldNotAllowed}, got)
}

func TestFieldsValid(t *testing.T) {
	s := sample{Title: "ok", Mail: "a@b.com", Picks: []string{"game"}, Hidden: "x"}
	assert.Empty(t, Fields(context.Background(), s, nil))
}

func TestValidateFirstError(t *testing.T) {
	err := Validate(context.Background(), sample{Title: "too long", Mail: "a@b.com", Picks: []string{"game"}, Hidden: "x"})
	require.Error(t, err)
	assert.Equal(t, ErrFieldExceedsMaxLen+": title", err.Error())

	assert.NoError(t, Validate(context.Background(), sample{Title: "ok", Mail: "a@b.com", Picks: []string{"game"}, Hidden: "x"}))
}
