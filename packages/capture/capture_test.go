package capture

import (
	"fmt"
	"testing"

	"github.com/abdul-hamid-achik/harpi/packages/core/parser"
	"github.com/abdul-hamid-achik/harpi/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractor_Extract(t *testing.T) {
	resp := &http.Response{
		StatusCode: 200,
		Body:       []byte(`{"id": 42, "token": "abc", "items": [{"name": "a"}, {"name": "b"}], "missing": null}`),
	}
	e := NewExtractor(resp)

	tests := []struct {
		code string
		want any
	}{
		{"response.id", float64(42)},
		{"response.token", "abc"},
		{"response.items[1].name", "b"},
		{"response.items.find(i => i.name == 'a').name", "a"},
		{"response.items.length", float64(2)},
		{"response.token + '-' + response.id", "abc-42"},
		{"response.missing", ""},
		{"response.nothing", ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			a, err := e.Extract(&parser.VariableAssignment{VariableName: "v", Code: tt.code})
			require.NoError(t, err)
			assert.Equal(t, "v", a.Key)
			assert.Equal(t, tt.want, a.Value)
		})
	}
}

func TestExtractor_TextBody(t *testing.T) {
	e := NewExtractor(&http.Response{StatusCode: 200, Body: []byte("token-123")})

	a, err := e.Extract(&parser.VariableAssignment{VariableName: "token", Code: "response"})
	require.NoError(t, err)
	assert.Equal(t, "token-123", a.Value)
}

func TestExtractor_ExtractAllSkipsFailures(t *testing.T) {
	e := NewExtractor(&http.Response{StatusCode: 200, Body: []byte(`{"id": 1}`)})

	var warnings []string
	e.SetWarnFunc(func(format string, args ...any) {
		warnings = append(warnings, fmt.Sprintf(format, args...))
	})

	results := e.ExtractAll([]*parser.VariableAssignment{
		{VariableName: "id", Code: "response.id"},
		{VariableName: "bad", Code: "response.id.x.y"},
		{VariableName: "unknown", Code: "other"},
		{VariableName: "doubled", Code: "response.id * 2"},
	})

	assert.Equal(t, []Assignment{{Key: "id", Value: float64(1)}, {Key: "doubled", Value: float64(2)}}, results)
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "variable assignment bad failed")
	assert.Contains(t, warnings[1], `unknown variable "other"`)
}

func TestExtractor_FailedResponse(t *testing.T) {
	e := NewExtractor(&http.Response{StatusCode: http.StatusFailed, Error: "refused"})

	_, err := e.Extract(&parser.VariableAssignment{VariableName: "id", Code: "response.id"})
	assert.Error(t, err)
}

func TestToMap(t *testing.T) {
	m := ToMap([]Assignment{{Key: "a", Value: 1}, {Key: "b", Value: "x"}, {Key: "a", Value: 2}})
	assert.Equal(t, map[string]any{"a": 2, "b": "x"}, m)
}
