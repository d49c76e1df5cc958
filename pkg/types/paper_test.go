// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSOTAClaimUnmarshalValue(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want *string
	}{
		{name: "string", in: `{"benchmark": "MMLU", "value": "63.1%"}`, want: strPtr("63.1%")},
		{name: "number", in: `{"benchmark": "MMLU", "value": 63.1}`, want: strPtr("63.1")},
		{name: "integer", in: `{"benchmark": "MMLU", "value": 90}`, want: strPtr("90")},
		{name: "exponent", in: `{"benchmark": "MMLU", "value": 1e-3}`, want: strPtr("1e-3")},
		{name: "null", in: `{"benchmark": "MMLU", "value": null}`},
		{name: "missing", in: `{"benchmark": "MMLU"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var c SOTAClaim
			require.NoError(t, json.Unmarshal([]byte(tc.in), &c))
			assert.Equal(t, "MMLU", c.Benchmark)
			assert.Equal(t, tc.want, c.Value)
		})
	}
}

func TestSOTAClaimUnmarshalKeepsOtherFields(t *testing.T) {
	var c SOTAClaim
	require.NoError(t, json.Unmarshal([]byte(`{"benchmark": "GLUE", "metric": "acc", "value": 88.5, "split": "test"}`), &c))
	require.NotNil(t, c.Metric)
	require.NotNil(t, c.Split)
	assert.Equal(t, "acc", *c.Metric)
	assert.Equal(t, "test", *c.Split)
	assert.Equal(t, "88.5", *c.Value)

	out, err := json.Marshal(c)
	require.NoError(t, err)
	assert.JSONEq(t, `{"benchmark": "GLUE", "metric": "acc", "value": "88.5", "split": "test"}`, string(out))
}

func TestSOTAClaimUnmarshalRejectsBool(t *testing.T) {
	var c SOTAClaim
	assert.Error(t, json.Unmarshal([]byte(`{"benchmark": "MMLU", "value": true}`), &c))
}

func strPtr(s string) *string { return &s }
