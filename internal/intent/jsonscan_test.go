package intent

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindFirstBalancedJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "plain object",
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
		},
		{
			name:  "object inside prose",
			input: `the answer is {"a": 1} thanks`,
			want:  `{"a": 1}`,
		},
		{
			name:  "nested objects",
			input: `{"a": {"b": 2}} trailing`,
			want:  `{"a": {"b": 2}}`,
		},
		{
			name:  "braces inside strings ignored",
			input: `{"note": "open { and close }"} rest`,
			want:  `{"note": "open { and close }"}`,
		},
		{
			name:  "escaped quote inside string",
			input: `{"note": "she said \"hi {there}\""} end`,
			want:  `{"note": "she said \"hi {there}\""}`,
		},
		{
			name:  "unbalanced returns empty",
			input: `{"a": {"b": 2}`,
			want:  "",
		},
		{
			name:  "no object",
			input: "nothing here",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, findFirstBalancedJSON(tt.input))
		})
	}
}

func TestAttemptJSONLoad(t *testing.T) {
	t.Run("valid json", func(t *testing.T) {
		v, err := attemptJSONLoad(`{"a": 1}`)
		require.NoError(t, err)
		obj, ok := v.(map[string]interface{})
		require.True(t, ok)
		assert.Equal(t, 1.0, obj["a"])
	})

	t.Run("trailing comma in object", func(t *testing.T) {
		v, err := attemptJSONLoad(`{"a": 1,}`)
		require.NoError(t, err)
		assert.Contains(t, v, "a")
	})

	t.Run("trailing comma in array", func(t *testing.T) {
		v, err := attemptJSONLoad(`{"a": [1, 2,]}`)
		require.NoError(t, err)
		assert.Contains(t, v, "a")
	})

	t.Run("object buried in prose", func(t *testing.T) {
		v, err := attemptJSONLoad(`reply: {"a": 1} done`)
		require.NoError(t, err)
		assert.Contains(t, v, "a")
	})

	t.Run("buried object with trailing comma", func(t *testing.T) {
		v, err := attemptJSONLoad(`reply: {"a": [1,],} done`)
		require.NoError(t, err)
		assert.Contains(t, v, "a")
	})

	t.Run("hopeless input", func(t *testing.T) {
		_, err := attemptJSONLoad("no json at all")
		assert.Error(t, err)
	})
}

func TestExtractJSONObjectPrefersFence(t *testing.T) {
	reply := "prose {\"decoy\": true} more\n```json\n{\"a\": 1}\n```"
	assert.Equal(t, `{"a": 1}`, extractJSONObject(reply))
}

func TestExtractJSONObjectFallsBackToScan(t *testing.T) {
	assert.Equal(t, `{"a": 1}`, extractJSONObject(`text {"a": 1} text`))
}
