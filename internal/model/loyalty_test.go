package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTierFor(t *testing.T) {
	cases := []struct {
		points int
		name   string
		pct    int
	}{
		{0, "Bronze", 5},
		{199, "Bronze", 5},
		{200, "Silver", 10},
		{499, "Silver", 10},
		{500, "Gold", 15},
		{999, "Gold", 15},
		{1000, "Diamond", 20},
		{50000, "Diamond", 20},
	}

	for _, c := range cases {
		tier := TierFor(c.points)
		assert.Equal(t, c.name, tier.Name, "points %d", c.points)
		assert.Equal(t, c.pct, tier.DiscountPercent, "points %d", c.points)
	}
}

func TestTiersIsACopy(t *testing.T) {
	got := Tiers()
	got[0].DiscountPercent = 99
	assert.Equal(t, 5, TierFor(0).DiscountPercent)
}
