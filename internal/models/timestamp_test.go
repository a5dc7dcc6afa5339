package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikgithub05/travel-buddy/internal/models"
)

func TestNewTimestampTruncatesToSecondUTC(t *testing.T) {
	loc := time.FixedZone("plus2", 2*60*60)
	ts := models.NewTimestamp(time.Date(2024, 5, 1, 12, 30, 45, 999_000_000, loc))
	assert.Equal(t, "2024-05-01 10:30:45", ts.String())
}

func TestTimestampScan(t *testing.T) {
	var ts models.Timestamp
	require.NoError(t, ts.Scan("2024-05-01 10:30:45"))
	assert.Equal(t, "2024-05-01 10:30:45", ts.String())

	require.NoError(t, ts.Scan(time.Date(2024, 5, 1, 10, 30, 45, 500, time.UTC)))
	assert.Equal(t, "2024-05-01 10:30:45", ts.String())

	assert.Error(t, ts.Scan("yesterday"))
	assert.Error(t, ts.Scan(3.14))
}

func TestTimestampJSON(t *testing.T) {
	ts, err := models.ParseTimestamp("2024-05-01 10:30:45")
	require.NoError(t, err)

	data, err := json.Marshal(ts)
	require.NoError(t, err)
	assert.JSONEq(t, `"2024-05-01 10:30:45"`, string(data))

	var back models.Timestamp
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, ts.Equal(back.Time))
}

func TestTripPreferenceNaturalKey(t *testing.T) {
	ts, err := models.ParseTimestamp("2024-05-01 10:30:45")
	require.NoError(t, err)
	p := models.TripPreference{UserID: 7, CreatedAt: ts}
	assert.Equal(t, "7_2024-05-01 10:30:45", p.NaturalKey())
}
