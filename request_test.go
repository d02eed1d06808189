package idaia_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pedrocandeias/idaia"
)

func TestRequest_Validate(t *testing.T) {
	t.Parallel()

	valid := idaia.Request{UserPrompt: "make a box"}
	assert.NoError(t, valid.Validate())

	empty := idaia.Request{}
	assert.ErrorIs(t, empty.Validate(), idaia.ErrValidation)

	hot := 3.0
	badTemp := idaia.Request{UserPrompt: "hi", Temperature: &hot}
	assert.ErrorIs(t, badTemp.Validate(), idaia.ErrValidation)

	negTokens := idaia.Request{UserPrompt: "hi", MaxTokens: -1}
	assert.ErrorIs(t, negTokens.Validate(), idaia.ErrValidation)
}

func TestRequest_Transcript(t *testing.T) {
	t.Parallel()
	req := idaia.Request{
		UserPrompt: "now a sphere",
		Turns: []idaia.Turn{
			{Role: idaia.RoleUser, Text: "make a box"},
			{Role: idaia.RoleAssistant, Text: "Created box Box"},
		},
	}

	ts := req.Transcript()
	require.Len(t, ts, 3)
	assert.Equal(t, idaia.RoleUser, ts[0].Role)
	assert.Equal(t, idaia.RoleUser, ts[2].Role)
	assert.Equal(t, "now a sphere", ts[2].Text)
}
