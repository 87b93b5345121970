package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPluralizePoints(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "очков"},
		{1, "очко"},
		{2, "очка"},
		{4, "очка"},
		{5, "очков"},
		{11, "очков"},
		{12, "очков"},
		{21, "очко"},
		{22, "очка"},
		{111, "очков"},
		{-1, "очко"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PluralizePoints(tt.n), "n=%d", tt.n)
	}
}

func TestPluralizeDaysAndUnits(t *testing.T) {
	assert.Equal(t, "день", PluralizeDays(1))
	assert.Equal(t, "дня", PluralizeDays(3))
	assert.Equal(t, "дней", PluralizeDays(14))
	assert.Equal(t, "повторений", PluralizeReps(15))
	assert.Equal(t, "повторения", PluralizeReps(22))
	assert.Equal(t, "секунд", PluralizeSeconds(30))
	assert.Equal(t, "секунда", PluralizeSeconds(61))
}

func TestFormatPointsDelta(t *testing.T) {
	assert.Equal(t, "+10 очков", FormatPointsDelta(10))
	assert.Equal(t, "+2 очка", FormatPointsDelta(2))
	assert.Equal(t, "-15 очков", FormatPointsDelta(-15))
	assert.Equal(t, "45 очков", FormatPoints(45))
}

func TestDateISOUsesLocation(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	// 22:30 UTC — в Москве уже следующий день
	ts := time.Date(2024, 3, 9, 22, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-09", DateISO(ts))
	assert.Equal(t, "2024-03-10", DateISO(ts.In(msk)))
}
