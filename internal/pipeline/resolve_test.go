package pipeline

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/specialistvlad/gridetl/internal/runctx"
	"github.com/specialistvlad/gridetl/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeConf(t *testing.T, raw string) map[string]any {
	t.Helper()
	if raw == "" {
		return nil
	}
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	var conf map[string]any
	require.NoError(t, dec.Decode(&conf))
	return conf
}

func TestResolveKey(t *testing.T) {
	trigger := testutil.FixedClock(time.Date(2024, 3, 2, 0, 5, 0, 0, time.Local))

	testCases := []struct {
		name           string
		conf           string
		expectedKey    PartitionKey
		expectedSource string
	}{
		{"override", `{"process_date":"2024-03-01"}`, "2024-03-01", "conf"},
		{"override is not reformatted", `{"process_date":"01/03/2024"}`, "01/03/2024", "conf"},
		{"empty string override is used", `{"process_date":""}`, "", "conf"},
		{"numeric override", `{"process_date":20240301}`, "20240301", "conf"},
		{"null override falls back to clock", `{"process_date":null}`, "2024-03-02", "clock"},
		{"empty conf", `{}`, "2024-03-02", "clock"},
		{"no conf", ``, "2024-03-02", "clock"},
		{"unrelated keys", `{"other":"x"}`, "2024-03-02", "clock"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			key, source := ResolveKey(decodeConf(t, tc.conf), trigger)
			assert.Equal(t, tc.expectedKey, key)
			assert.Equal(t, tc.expectedSource, source)
		})
	}
}

func TestResolveKey_NonJSONScalars(t *testing.T) {
	clock := testutil.FixedClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))

	key, _ := ResolveKey(map[string]any{"process_date": float64(20240301)}, clock)
	assert.Equal(t, PartitionKey("20240301"), key)

	key, _ = ResolveKey(map[string]any{"process_date": true}, clock)
	assert.Equal(t, PartitionKey("true"), key)
}

func TestResolveKey_UsesClockLocation(t *testing.T) {
	// 03:00 UTC is still the previous day in Bogota.
	bogota := time.FixedZone("COT", -5*60*60)
	instant := time.Date(2024, 3, 2, 3, 0, 0, 0, time.UTC).In(bogota)

	key, _ := ResolveKey(nil, testutil.FixedClock(instant))
	assert.Equal(t, PartitionKey("2024-03-01"), key)
}

func TestResolve_PushesOnce(t *testing.T) {
	rc := runctx.New("run-1")
	r := &Resolve{
		Conf:  map[string]any{"process_date": "2024-03-01"},
		Clock: testutil.FixedClock(time.Now()),
	}

	require.NoError(t, r.Run(context.Background(), rc))
	assert.Equal(t, map[string]string{"process_date": "2024-03-01"}, rc.Snapshot())

	err := r.Run(context.Background(), rc)
	assert.ErrorIs(t, err, runctx.ErrDuplicateKey)
	assert.Equal(t, map[string]string{"process_date": "2024-03-01"}, rc.Snapshot())
}

func TestResolve_DefaultClock(t *testing.T) {
	rc := runctx.New("run-1")
	require.NoError(t, (&Resolve{}).Run(context.Background(), rc))

	key, err := ProcessDate.Pull(rc)
	require.NoError(t, err)
	_, err = time.Parse(DateLayout, string(key))
	assert.NoError(t, err)
}

func TestResolve_DeclaresProducedKey(t *testing.T) {
	assert.Equal(t, []string{"process_date"}, (&Resolve{}).Produces())
}
