package llmjson

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want any
	}{
		{name: "fenced with language tag", raw: "```json\n{\"a\":1}\n```", want: map[string]any{"a": 1.0}},
		{name: "fenced without tag", raw: "```\n{\"a\":1}\n```", want: map[string]any{"a": 1.0}},
		{name: "single line fence", raw: "```json {\"a\":1}```", want: map[string]any{"a": 1.0}},
		{name: "trailing comma", raw: `{"a":1,}`, want: map[string]any{"a": 1.0}},
		{name: "trailing comma in array", raw: "{\"a\":[1,2,\n]}", want: map[string]any{"a": []any{1.0, 2.0}}},
		{name: "raw newline inside string", raw: "{\"d\":\"line one\nline two\"}", want: map[string]any{"d": "line one line two"}},
		{name: "surrounding whitespace", raw: "  \n{\"a\":true}\n ", want: map[string]any{"a": true}},
		{name: "array value", raw: `[1,2]`, want: []any{1.0, 2.0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtract_Unrecoverable(t *testing.T) {
	for _, raw := range []string{"not json at all", "", "```json\n{\"a\":\n```", `{"a":1} trailing`} {
		got, err := Extract(raw)
		assert.Nil(t, got)

		var perr *ParseError
		require.True(t, errors.As(err, &perr), "raw %q", raw)
		assert.Equal(t, raw, perr.Raw)
	}
}

func TestExtract_PersianPayload(t *testing.T) {
	raw := "```json\n{\n  \"type\": \"buy\",\n  \"counterparty\": \"آقای رضایی\",\n  \"items\": [\n    {\"itemName\": \"برنج\", \"quantity\": 10},\n  ],\n}\n```"

	got, err := Extract(raw)
	require.NoError(t, err)

	obj, ok := got.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "آقای رضایی", obj["counterparty"])
	assert.Len(t, obj["items"], 1)
}

func TestStripFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripFence("```JSON\r\n{\"a\":1}\r\n```"))
	assert.Equal(t, `{"a":1}`, StripFence(`{"a":1}`))
}
