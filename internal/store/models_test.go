package store

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullFloat(t *testing.T) {
	undefined := NullFloat{}

	assert.False(t, Float(math.NaN()).Valid)
	assert.False(t, Float(math.Inf(1)).Valid)
	assert.True(t, Float(0).Valid)

	assert.Equal(t, Float(5), Float(2).Add(Float(3)))
	assert.Equal(t, Float(-1), Float(2).Sub(Float(3)))
	assert.Equal(t, Float(5), Float(2.5).Scale(2))

	assert.False(t, undefined.Add(Float(1)).Valid)
	assert.False(t, Float(1).Sub(undefined).Valid)
	assert.False(t, undefined.Scale(2).Valid)
}

func TestNullFloatJSON(t *testing.T) {
	type row struct {
		A NullFloat `json:"a"`
		B NullFloat `json:"b"`
	}

	data, err := json.Marshal(row{A: Float(1.5)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 1.5, "b": null}`, string(data))

	var got row
	require.NoError(t, json.Unmarshal([]byte(`{"a": null, "b": 42}`), &got))
	assert.False(t, got.A.Valid)
	assert.Equal(t, Float(42), got.B)

	assert.Error(t, json.Unmarshal([]byte(`{"a": "x"}`), &got))
}

func TestNullFloatSQL(t *testing.T) {
	var n NullFloat
	require.NoError(t, n.Scan(3.25))
	assert.Equal(t, Float(3.25), n)

	require.NoError(t, n.Scan(nil))
	assert.False(t, n.Valid)

	v, err := n.Value()
	require.NoError(t, err)
	assert.Nil(t, v)
}
