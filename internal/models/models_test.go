package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeStats(t *testing.T) {
	tests := []struct {
		name           string
		total          int
		basic          int
		pro            int
		wantMRR        int
		wantConversion int
	}{
		{name: "no users", total: 0, wantMRR: 0, wantConversion: 0},
		{name: "mixed", total: 10, basic: 3, pro: 2, wantMRR: 2*40 + 3*20, wantConversion: 20},
		{name: "rounds half up", total: 8, pro: 1, wantMRR: 40, wantConversion: 13},
		{name: "rounds down", total: 3, pro: 1, basic: 1, wantMRR: 60, wantConversion: 33},
		{name: "all pro", total: 4, pro: 4, wantMRR: 160, wantConversion: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := ComputeStats(tt.total, tt.basic, tt.pro, nil)
			assert.Equal(t, tt.total, s.TotalUsers)
			assert.Equal(t, tt.wantMRR, s.MRR)
			assert.Equal(t, tt.wantConversion, s.ConversionRate)
			assert.NotNil(t, s.RecentSignups)
		})
	}
}

func TestTask_Deadline(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	end := start.Add(2 * time.Hour)

	withoutEnd := Task{ScheduledAt: start}
	assert.Equal(t, start.Add(30*time.Minute), withoutEnd.Deadline(30*time.Minute))

	withEnd := Task{ScheduledAt: start, EndAt: &end}
	assert.Equal(t, end, withEnd.Deadline(30*time.Minute))
}

func TestPlanFor(t *testing.T) {
	basic, ok := PlanFor(TierBasic)
	require.True(t, ok)
	assert.Equal(t, 20, basic.PriceMonthly)
	assert.Equal(t, 50, basic.Calls)

	pro, ok := PlanFor(TierPro)
	require.True(t, ok)
	assert.Equal(t, 40, pro.PriceMonthly)
	assert.Equal(t, 100, pro.Calls)

	_, ok = PlanFor(TierNone)
	assert.False(t, ok)
	assert.Equal(t, 0, TierNone.MonthlyPrice())
}

func TestTier_Valid(t *testing.T) {
	for _, tier := range []Tier{TierNone, TierBasic, TierPro} {
		assert.True(t, tier.Valid(), tier)
	}
	assert.False(t, Tier("GOLD").Valid())
	assert.False(t, Tier("basic").Valid())
}
