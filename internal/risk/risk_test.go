package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuantity(t *testing.T) {
	s := NewSizer(20, 2)
	assert.InDelta(t, 0.0004444, s.Quantity(90000), 1e-7)
	assert.Equal(t, 0.0, s.Quantity(0))
	assert.Equal(t, 0.0, s.Quantity(-1))
}

func TestLeverageFloor(t *testing.T) {
	s := NewSizer(20, 0)
	assert.Equal(t, 1, s.Leverage())
}
