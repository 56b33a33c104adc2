package slogpretty

import (
	"bytes"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
)

func TestPrettyHandler_Groups(t *testing.T) {
	color.NoColor = true

	var buf bytes.Buffer

	log := setupPrettySlog(&buf)
	log.With("op", "test").WithGroup("match").Info("scored", "donor_id", "d-1")

	out := buf.String()
	assert.Contains(t, out, "scored")
	assert.Contains(t, out, `"op": "test"`)
	assert.Contains(t, out, `"match.donor_id": "d-1"`)
}

func TestSetupLogger_UnknownEnv(t *testing.T) {
	assert.NotNil(t, SetupLogger("staging"))
}
