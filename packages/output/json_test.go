package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/abdul-hamid-achik/harpi/packages/core/runner"
	"github.com/abdul-hamid-achik/harpi/packages/http"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFormatter_Flush(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))

	req := sampleResult()
	req.Request = http.NewRequest("POST", "http://localhost/items")
	f.FormatResult(&runner.RunResult{
		File:    "api.harpi.yml",
		Results: []*runner.RequestResult{req},
	})
	f.FormatResult(&runner.RunResult{
		File: "text.harpi.yml",
		Results: []*runner.RequestResult{{
			ID:       1,
			Passed:   true,
			Response: &http.Response{StatusCode: 200, Body: []byte("ok")},
		}},
	})
	f.FormatError(errors.New("broken.harpi.yml: bad yaml"))

	require.NoError(t, f.Flush(time.Second))

	var out JSONOutput
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	assert.Equal(t, JSONSummary{Total: 2, Passed: 1, Failed: 1, AssertsPassed: 1, AssertsFailed: 1}, out.Summary)
	assert.Equal(t, []string{"broken.harpi.yml: bad yaml"}, out.Errors)
	assert.Equal(t, float64(1000), out.Duration)

	require.Len(t, out.Requests, 2)
	first := out.Requests[0]
	assert.Equal(t, "create item", first.Name)
	assert.Equal(t, "POST", first.Request.Method)
	assert.Equal(t, map[string]any{"id": float64(7), "title": "first"}, first.Response.Body)
	assert.Equal(t, map[string]any{"itemId": float64(7)}, first.Assignments)
	assert.Len(t, first.Assertions, 2)

	assert.Equal(t, "ok", out.Requests[1].Response.Body)
}

func TestJSONFormatter_Empty(t *testing.T) {
	var buf bytes.Buffer
	f := NewJSONFormatter(JSONWithWriter(&buf))
	f.FormatHeader("1.0.0")
	require.NoError(t, f.Flush(0))

	var out map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))
	assert.Equal(t, []any{}, out["requests"])
	assert.NotContains(t, out, "errors")
}
