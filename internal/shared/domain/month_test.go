package domain

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMonth_Validation(t *testing.T) {
	_, err := NewMonth(0, time.January)
	assert.Error(t, err)

	_, err = NewMonth(2024, 13)
	assert.Error(t, err)

	m, err := NewMonth(2024, time.March)
	require.NoError(t, err)
	assert.Equal(t, "2024-03", m.String())
	assert.Equal(t, 1, m.Quarter())
	assert.Equal(t, "03月", m.Label())
}

func TestParseMonth_Layouts(t *testing.T) {
	want := MustNewMonth(2024, time.January)
	for _, input := range []string{
		"2024-01",
		"2024-01-15",
		" 2024/01/31 ",
		"2024-01-15 08:30:00",
		"2024-01-15T08:30:00Z",
		"202401",
	} {
		got, err := ParseMonth(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got, input)
	}

	_, err := ParseMonth("")
	assert.Error(t, err)
	_, err = ParseMonth("janvier")
	assert.Error(t, err)
}

func TestMonth_Ordering(t *testing.T) {
	jan := MustNewMonth(2024, time.January)
	dec := MustNewMonth(2023, time.December)

	assert.True(t, dec.Before(jan))
	assert.False(t, jan.Before(dec))
	assert.Equal(t, 0, jan.Compare(jan))
	assert.Equal(t, 1, jan.Compare(dec))
	assert.Equal(t, jan, dec.AddMonths(1))
	assert.Equal(t, dec, jan.AddMonths(-1))
	assert.Equal(t, MustNewMonth(2025, time.February), jan.AddMonths(13))
}

func TestMonth_ZeroValue(t *testing.T) {
	var m Month
	assert.True(t, m.IsZero())
	assert.Equal(t, "", m.String())
}

func TestMonth_TextRoundTrip(t *testing.T) {
	type payload struct {
		Month Month `json:"month"`
	}

	data, err := json.Marshal(payload{Month: MustNewMonth(2024, time.July)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"month":"2024-07"}`, string(data))

	var decoded payload
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, MustNewMonth(2024, time.July), decoded.Month)

	require.NoError(t, json.Unmarshal([]byte(`{"month":""}`), &decoded))
	assert.True(t, decoded.Month.IsZero())
}

func TestMonth_UsableAsMapKey(t *testing.T) {
	counts := map[Month]int{}
	a, _ := ParseMonth("2024-05-01")
	b, _ := ParseMonth("2024-05-31")
	counts[a]++
	counts[b]++
	assert.Len(t, counts, 1)
	assert.Equal(t, 2, counts[MustNewMonth(2024, time.May)])
}

func BenchmarkParseMonth(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = ParseMonth("2024-01-15")
	}
}
