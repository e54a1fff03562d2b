package expr

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromJSON_KeepsKeyOrder(t *testing.T) {
	v, ok := FromJSON([]byte(`{"zeta":1,"alpha":{"y":true,"x":null},"mid":[1,"two"]}`))
	require.True(t, ok)
	assert.Equal(t, KindObject, v.Kind())
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, v.Keys())

	alpha, ok := v.Field("alpha")
	require.True(t, ok)
	assert.Equal(t, []string{"y", "x"}, alpha.Keys())

	mid, _ := v.Field("mid")
	require.Len(t, mid.Items(), 2)
	assert.Equal(t, "two", mid.Items()[1].Str())
}

func TestFromJSON_Invalid(t *testing.T) {
	_, ok := FromJSON([]byte(`not json`))
	assert.False(t, ok)
}

func TestValue_Truthy(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"null", Null(), false},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"zero", Number(0), false},
		{"nan", Number(math.NaN()), false},
		{"number", Number(-1), true},
		{"empty string", String(""), false},
		{"string", String("0"), true},
		{"empty array", Array(nil), true},
		{"empty object", Object(nil, nil), true},
		{"date", Date(time.Unix(0, 0)), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.v.Truthy())
		})
	}
}

func TestValue_String(t *testing.T) {
	assert.Equal(t, "1,2,", Array([]Value{Number(1), Number(2), Null()}).String())
	assert.Equal(t, "[object Object]", Object(nil, nil).String())
	assert.Equal(t, "0.1", Number(0.1).String())
	assert.Equal(t, "100000", Number(1e5).String())
	assert.Equal(t, "1e+21", Number(1e21).String())
	assert.Equal(t, "NaN", Number(math.NaN()).String())
	assert.Equal(t, "[object Object]", namespace("Object").String())
}

func TestValue_Native(t *testing.T) {
	v, ok := FromJSON([]byte(`{"id":1,"tags":["a"],"ok":true,"none":null}`))
	require.True(t, ok)

	assert.Equal(t, map[string]any{
		"id":   float64(1),
		"tags": []any{"a"},
		"ok":   true,
		"none": nil,
	}, v.Native())
}

func TestFromNative(t *testing.T) {
	v := FromNative(map[string]any{"b": 2, "a": []string{"x"}})
	assert.Equal(t, []string{"a", "b"}, v.Keys())

	b, _ := v.Field("b")
	assert.Equal(t, KindNumber, b.Kind())
	assert.Equal(t, float64(2), b.Num())

	assert.True(t, FromNative(nil).IsNull())
	assert.Equal(t, KindDate, FromNative(time.Now()).Kind())
}
