package builtin

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedRegistry() *Registry {
	r := NewRegistry()
	r.SetClock(func() time.Time {
		return time.Date(2024, 3, 1, 12, 30, 45, 0, time.Local)
	})
	return r
}

func TestRegistry_Dynamic(t *testing.T) {
	r := fixedRegistry()

	tests := []struct {
		value string
		want  string
	}{
		{"$(date)", "2024-03-01T12:30:45"},
		{"$(date.addMinutes(5))", "2024-03-01T12:35:45"},
		{"$(date.addMinutes(-30))", "2024-03-01T12:00:45"},
		{"$(date.addHours(1))", "2024-03-01T13:30:45"},
		{"$(date.addDays(1))", "2024-03-02T12:30:45"},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, ok := r.Dynamic(tt.value)
			require.True(t, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRegistry_GUID(t *testing.T) {
	r := NewRegistry()

	first, ok := r.Dynamic("$(guid)")
	require.True(t, ok)
	_, err := uuid.Parse(first)
	assert.NoError(t, err)

	second, _ := r.Dynamic("$(guid)")
	assert.NotEqual(t, first, second)
}

func TestRegistry_NotDynamic(t *testing.T) {
	r := NewRegistry()

	for _, value := range []string{"guid", "$(baseUrl)", "prefix $(guid)", "$(guid) suffix", "", "$(nope(1))"} {
		_, ok := r.Dynamic(value)
		assert.False(t, ok, value)
	}
}

func TestRegistry_Has(t *testing.T) {
	r := NewRegistry()
	assert.True(t, r.Has("guid"))
	assert.True(t, r.Has("date.addMinutes(10)"))
	assert.False(t, r.Has("baseUrl"))
}

func TestRegistry_Register(t *testing.T) {
	r := NewRegistry()
	r.Register("answer", func(_ []string) any { return 42 })

	got, ok := r.Dynamic("$(answer)")
	require.True(t, ok)
	assert.Equal(t, "42", got)
}

func TestRandom(t *testing.T) {
	for i := 0; i < 20; i++ {
		v := funcRandom([]string{"5", "1"}).(int)
		assert.GreaterOrEqual(t, v, 1)
		assert.LessOrEqual(t, v, 5)
	}
	assert.Len(t, funcRandomString([]string{"12"}).(string), 12)
	assert.Contains(t, funcRandomEmail(nil).(string), "@")
}

func TestParseArgs(t *testing.T) {
	assert.Equal(t, []string{"a", "b, c", "d"}, parseArgs(`a, "b, c", d`))
	assert.Nil(t, parseArgs(""))
}
