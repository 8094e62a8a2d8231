package domain

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNullFloatJSON(t *testing.T) {
	data, err := json.Marshal(Float(83.71))
	require.NoError(t, err)
	assert.Equal(t, "83.71", string(data))

	data, err = json.Marshal(Null())
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var v NullFloat
	require.NoError(t, json.Unmarshal([]byte("null"), &v))
	assert.False(t, v.Valid)

	require.NoError(t, json.Unmarshal([]byte("0"), &v))
	assert.True(t, v.Valid, "JSON zero is a genuine zero, not missing")
	assert.Equal(t, 0.0, v.Float64)

	assert.Error(t, json.Unmarshal([]byte(`"nope"`), &v))
}

func TestNullFloatOr(t *testing.T) {
	assert.Equal(t, 5.0, Float(5).Or(0))
	assert.Equal(t, 0.0, Null().Or(0))
	assert.Equal(t, -1.0, Null().Or(-1))
}

func TestNullFloatEqual(t *testing.T) {
	assert.True(t, Float(3).Equal(Float(3)))
	assert.True(t, Null().Equal(Null()))
	assert.False(t, Float(0).Equal(Null()), "zero and missing are never equal")
	assert.False(t, Float(3).Equal(Float(4)))
}

func TestNullFloatString(t *testing.T) {
	assert.Equal(t, "178", Float(178).String())
	assert.Equal(t, "0.8371", Float(0.8371).String())
	assert.Equal(t, "", Null().String())
}

func TestNullBoolJSON(t *testing.T) {
	data, err := json.Marshal(BoolOf(true))
	require.NoError(t, err)
	assert.Equal(t, "true", string(data))

	data, err = json.Marshal(NullBool{})
	require.NoError(t, err)
	assert.Equal(t, "null", string(data))

	var v NullBool
	require.NoError(t, json.Unmarshal([]byte("false"), &v))
	assert.True(t, v.Valid)
	assert.False(t, v.Bool)

	require.NoError(t, json.Unmarshal([]byte("null"), &v))
	assert.False(t, v.Valid)
}

func TestWideRowValue(t *testing.T) {
	row := WideRow{Values: map[string]NullFloat{"white": Float(10)}}
	assert.Equal(t, Float(10), row.Value("white"))
	assert.False(t, row.Value("absent").Valid)

	var empty WideRow
	assert.False(t, empty.Value("white").Valid, "a row without values reads as missing")
}

func TestYearSupported(t *testing.T) {
	assert.True(t, YearSupported(KindEnrollment, MinEnrollmentYear))
	assert.True(t, YearSupported(KindEnrollment, MaxEnrollmentYear))
	assert.False(t, YearSupported(KindEnrollment, MinEnrollmentYear-1))
	assert.False(t, YearSupported(KindEnrollment, MaxEnrollmentYear+1))

	assert.True(t, YearSupported(KindGraduation, MinGraduationYear))
	assert.False(t, YearSupported(KindGraduation, MinGraduationYear-1))
}
