package task

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperatorAttributes(t *testing.T) {
	tests := []struct {
		op       Operator
		priority int
		symbol   byte
		apply    float64
	}{
		{op: Addition, priority: 5, symbol: '+', apply: 8},
		{op: Subtraction, priority: 5, symbol: '-', apply: 4},
		{op: Multiplication, priority: 6, symbol: '*', apply: 12},
		{op: Division, priority: 6, symbol: '/', apply: 3},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			assert.Equal(t, tt.priority, tt.op.Priority())
			assert.Equal(t, tt.symbol, tt.op.Symbol())
			assert.Equal(t, tt.apply, tt.op.Apply(6, 2))
		})
	}
}

func TestParseOperator(t *testing.T) {
	for _, op := range AllOperators {
		got, err := ParseOperator(op.String())
		require.NoError(t, err)
		assert.Equal(t, op, got)

		got, err = ParseOperator(string(op.Symbol()))
		require.NoError(t, err)
		assert.Equal(t, op, got)
	}

	_, err := ParseOperator("modulo")
	assert.Error(t, err)
}

func TestOperatorJSON(t *testing.T) {
	data, err := json.Marshal([]Operator{Addition, Division})
	require.NoError(t, err)
	assert.JSONEq(t, `["addition","division"]`, string(data))

	var ops []Operator
	require.NoError(t, json.Unmarshal([]byte(`["*","subtraction"]`), &ops))
	assert.Equal(t, []Operator{Multiplication, Subtraction}, ops)

	assert.Error(t, json.Unmarshal([]byte(`["power"]`), &ops))
}
