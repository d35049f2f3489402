package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/clinica-api/pkg/clock"
)

func TestFixed_AdvanceYSet(t *testing.T) {
	loc := time.FixedZone("PYT", -3*3600)
	c := clock.NewFixed(time.Date(2024, 1, 1, 9, 0, 0, 0, loc))

	assert.Equal(t, time.UTC, c.Now().Location(), "el reloj siempre entrega UTC")
	assert.Equal(t, 12, c.Now().Hour())

	c.Advance(90 * time.Minute)
	assert.Equal(t, 13, c.Now().Hour())
	assert.Equal(t, 30, c.Now().Minute())

	c.Set(time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, time.February, c.Now().Month())
}
