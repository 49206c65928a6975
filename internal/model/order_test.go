package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextStatus(t *testing.T) {
	cases := []struct {
		from OrderStatus
		to   OrderStatus
		ok   bool
	}{
		{StatusReceived, StatusConfirmed, true},
		{StatusConfirmed, StatusPreparing, true},
		{StatusPreparing, StatusOnTheWay, true},
		{StatusOnTheWay, StatusCompleted, true},
		{StatusCompleted, "", false},
		{StatusCancelled, "", false},
		{OrderStatus("bogus"), "", false},
	}

	for _, c := range cases {
		next, ok := NextStatus(c.from)
		assert.Equal(t, c.ok, ok, "from %s", c.from)
		assert.Equal(t, c.to, next, "from %s", c.from)
	}
}

func TestTerminal(t *testing.T) {
	assert.True(t, StatusCompleted.Terminal())
	assert.True(t, StatusCancelled.Terminal())
	assert.False(t, StatusReceived.Terminal())
	assert.False(t, StatusOnTheWay.Terminal())
}
