package profile

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/twinops/twindex/internal/log"
)

func TestParseDurationOngoing(t *testing.T) {
	d := ParseDuration("2021-03 - Present", log.NewNop())

	assert.True(t, d.Ongoing)
	assert.True(t, d.HasStart())
	assert.False(t, d.HasEnd())
	assert.Equal(t, time.March, d.Start.Month())
	assert.Equal(t, 2021, d.Start.Year())
}

func TestParseDurationCompleted(t *testing.T) {
	d := ParseDuration("2019-01 - 2020-06", log.NewNop())

	assert.False(t, d.Ongoing)
	assert.Equal(t, time.January, d.Start.Month())
	assert.Equal(t, 2019, d.Start.Year())
	assert.Equal(t, time.June, d.End.Month())
	assert.Equal(t, 2020, d.End.Year())
}

func TestParseDurationDashVariants(t *testing.T) {
	// En-dash and em-dash normalize to the plain separator.
	for _, s := range []string{"2019-01 – 2020-06", "2019-01 — 2020-06"} {
		d := ParseDuration(s, log.NewNop())
		assert.True(t, d.HasStart(), "input %q", s)
		assert.True(t, d.HasEnd(), "input %q", s)
	}
}

func TestParseDurationCurrent(t *testing.T) {
	d := ParseDuration("2022-07 - Current", log.NewNop())
	assert.True(t, d.Ongoing)
	assert.False(t, d.HasEnd())
}

func TestParseDurationGarbage(t *testing.T) {
	// Unparseable input yields zero values, never an error or panic.
	d := ParseDuration("since the dawn of time", log.NewNop())
	assert.False(t, d.HasStart())
	assert.False(t, d.HasEnd())
	assert.False(t, d.Ongoing)

	assert.Equal(t, Dates{}, ParseDuration("", log.NewNop()))
}

func TestParseDateFormats(t *testing.T) {
	tests := []struct {
		in        string
		wantYear  int
		wantMonth time.Month
	}{
		{"2021-03", 2021, time.March},
		{"2021/03", 2021, time.March},
		{"03/2021", 2021, time.March},
		{"2021", 2021, time.January},
		{"March 2021", 2021, time.March},
		{"Mar 2021", 2021, time.March},
	}

	for _, tt := range tests {
		got := ParseDate(tt.in, log.NewNop())
		assert.Equal(t, tt.wantYear, got.Year(), "input %q", tt.in)
		assert.Equal(t, tt.wantMonth, got.Month(), "input %q", tt.in)
	}
}

func TestParseDateUnparseable(t *testing.T) {
	assert.True(t, ParseDate("not a date", log.NewNop()).IsZero())
	assert.True(t, ParseDate("", log.NewNop()).IsZero())
}
