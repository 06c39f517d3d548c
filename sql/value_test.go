package sql

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecode(t *testing.T) {
	nested := MustParseType("struct<x: array<struct<y: array<float64>>>>")

	testCases := []struct {
		name  string
		value interface{}
		typ   Type
	}{
		{"boolean", true, Boolean},
		{"int64", int64(-42), Int64},
		{"float64", 1.5, Float64},
		{"integral float64", 2.0, Float64},
		{"string", "it's a\nstring", String},
		{"empty string", "", String},
		{"date", NewDate(2017, time.January, 2), Date},
		{"timestamp", time.Date(2017, time.January, 2, 3, 4, 5, 123456000, time.UTC), Timestamp},
		{"null", nil, Int64},
		{"array", []interface{}{int64(1), nil, int64(3)}, CreateArray(Int64)},
		{"empty array", []interface{}{}, CreateArray(String)},
		{
			"struct",
			NewStructValue("a", int64(1), "b", nil),
			MustCreateStruct(StructField{Name: "a", Type: Int64}, StructField{Name: "b", Type: String}),
		},
		{
			"nested",
			NewStructValue("x", []interface{}{
				NewStructValue("y", []interface{}{1.5, 2.0}),
				NewStructValue("y", []interface{}{}),
			}),
			nested,
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)

			encoded, err := Encode(tt.value, tt.typ)
			require.NoError(err)

			decoded, err := Decode(encoded, tt.typ)
			require.NoError(err)
			require.Equal(tt.value, decoded)
		})
	}
}

func TestEncode(t *testing.T) {
	testCases := []struct {
		name     string
		value    interface{}
		typ      Type
		expected interface{}
	}{
		{"boolean", false, Boolean, "false"},
		{"int64 from int", 7, Int64, "7"},
		{"float64", 1.0, Float64, "1"},
		{"date", time.Date(2017, time.January, 2, 10, 0, 0, 0, time.UTC), Date, "2017-01-02"},
		{"timestamp", time.Date(2017, time.January, 2, 3, 4, 5, 0, time.UTC), Timestamp, "2017-01-02T03:04:05Z"},
		{"array", []int64{1, 2}, CreateArray(Int64), []interface{}{"1", "2"}},
		{
			"struct",
			map[string]interface{}{"b": "x", "a": 1},
			MustCreateStruct(StructField{Name: "a", Type: Int64}, StructField{Name: "b", Type: String}),
			[]interface{}{"1", "x"},
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			encoded, err := Encode(tt.value, tt.typ)
			require.NoError(err)
			require.Equal(tt.expected, encoded)
		})
	}
}

func TestDecodeTimestamp(t *testing.T) {
	testCases := []struct {
		name     string
		raw      interface{}
		expected time.Time
	}{
		{"exponent epoch", "1.4832288E9", time.Date(2017, time.January, 1, 0, 0, 0, 0, time.UTC)},
		{"negative exponent epoch", "-3.1536E8", time.Unix(-315360000, 0).UTC()},
		{"negative epoch", "-1", time.Unix(-1, 0).UTC()},
		{"fractional epoch", 1.5, time.Unix(1, 500000000).UTC()},
		{"integer epoch", int64(60), time.Unix(60, 0).UTC()},
		{"date string", "2017-01-02", time.Date(2017, time.January, 2, 0, 0, 0, 0, time.UTC)},
		{"compact date", "20170102", time.Date(2017, time.January, 2, 0, 0, 0, 0, time.UTC)},
		{"datetime", "2017-01-02 03:04:05", time.Date(2017, time.January, 2, 3, 4, 5, 0, time.UTC)},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			v, err := Decode(tt.raw, Timestamp)
			require.NoError(err)
			require.Equal(tt.expected, v)
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	require := require.New(t)

	point := MustParseType("struct<x: int64, y: int64>")
	_, err := Decode([]interface{}{"1"}, point)
	require.True(ErrUnexpectedRowLength.Is(err))

	_, err = Decode("1", point)
	require.True(ErrTypeMismatch.Is(err))

	_, err = Decode("1", CreateArray(Int64))
	require.True(ErrTypeMismatch.Is(err))
}

func TestCoerce(t *testing.T) {
	testCases := []struct {
		name     string
		value    interface{}
		typ      Type
		expected interface{}
	}{
		{"null", nil, Int64, nil},
		{"int to int64", 3, Int64, int64(3)},
		{"int32 to int64", int32(3), Int64, int64(3)},
		{"integral float to int64", 2.0, Int64, int64(2)},
		{"decimal string to int64", "010", Int64, int64(10)},
		{"padded string to int64", " 7 ", Int64, int64(7)},
		{"negative string to int64", "-12", Int64, int64(-12)},
		{"int to float64", 3, Float64, 3.0},
		{"string to float64", "2.5", Float64, 2.5},
		{"string to boolean", "true", Boolean, true},
		{"int to string", 1, String, "1"},
		{"timestamp to date", time.Date(2017, time.January, 2, 3, 4, 5, 0, time.UTC), Date, NewDate(2017, time.January, 2)},
		{"string to timestamp", "2017-01-02T03:04:05Z", Timestamp, time.Date(2017, time.January, 2, 3, 4, 5, 0, time.UTC)},
		{"typed slice", []float64{1, 2.5}, CreateArray(Float64), []interface{}{1.0, 2.5}},
		{"mixed numbers", []interface{}{1, 2.5}, CreateArray(Float64), []interface{}{1.0, 2.5}},
		{"empty array", []string{}, CreateArray(String), []interface{}{}},
		{
			"map with missing field",
			map[string]interface{}{"a": "1"},
			MustCreateStruct(StructField{Name: "a", Type: Int64}, StructField{Name: "b", Type: String}),
			NewStructValue("a", int64(1), "b", nil),
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			v, err := Coerce(tt.value, tt.typ)
			require.NoError(err)
			require.Equal(tt.expected, v)
		})
	}
}

func TestCoerceErrors(t *testing.T) {
	testCases := []struct {
		name  string
		value interface{}
		typ   Type
	}{
		{"fractional float to int64", 1.5, Int64},
		{"infinite float to int64", math.Inf(1), Int64},
		{"nan to int64", math.NaN(), Int64},
		{"out of range float to int64", 1e19, Int64},
		{"exponent string to int64", "1e3", Int64},
		{"hex string to int64", "0x10", Int64},
		{"word to int64", "ten", Int64},
		{"word to boolean", "maybe", Boolean},
		{"malformed date", "2017-13-45", Date},
		{"not a date", "yesterday", Date},
		{"malformed timestamp", "2017-01-02T25:00:00", Timestamp},
		{"scalar to array", "a", CreateArray(String)},
		{"scalar to struct", 1, MustParseType("struct<a: int64>")},
		{"bad array element", []interface{}{1, 1.5}, CreateArray(Int64)},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Coerce(tt.value, tt.typ)
			require.True(t, ErrTypeMismatch.Is(err), "unexpected error: %v", err)
		})
	}
}

func TestCoerceUnknownField(t *testing.T) {
	require := require.New(t)

	typ := MustParseType("struct<a: int64>")
	value := map[string]interface{}{"a": 1, "z": 2, "y": 3, "m": 4}

	for i := 0; i < 20; i++ {
		_, err := Coerce(value, typ)
		require.True(ErrFieldNotFound.Is(err))
		require.Contains(err.Error(), `field "m"`)
	}

	_, err := Coerce(NewStructValue("a", 1, "b", 2), typ)
	require.True(ErrFieldNotFound.Is(err))
}

func TestTypeOf(t *testing.T) {
	testCases := []struct {
		name     string
		value    interface{}
		expected Type
	}{
		{"boolean", true, Boolean},
		{"int", 1, Int64},
		{"uint32", uint32(1), Int64},
		{"float32", float32(1), Float64},
		{"string", "a", String},
		{"timestamp", time.Now(), Timestamp},
		{"array", []interface{}{"a", "b"}, CreateArray(String)},
		{"mixed numbers", []interface{}{int64(1), 2.5}, CreateArray(Float64)},
		{"nulls in array", []interface{}{nil, "a", nil}, CreateArray(String)},
		{"empty typed slice", []int64{}, CreateArray(Int64)},
		{"nested array", [][]float64{{1}}, CreateArray(CreateArray(Float64))},
		{
			"struct",
			NewStructValue("x", []interface{}{NewStructValue("y", []float64{1})}),
			MustParseType("struct<x: array<struct<y: array<float64>>>>"),
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			require := require.New(t)
			typ, err := TypeOf(tt.value)
			require.NoError(err)
			require.True(tt.expected.Equals(typ), "expected %s, got %s", tt.expected, typ)
		})
	}
}

func TestTypeOfErrors(t *testing.T) {
	testCases := []struct {
		name  string
		value interface{}
		kind  interface{ Is(error) bool }
	}{
		{"null", nil, ErrInvalidType},
		{"empty array", []interface{}{}, ErrInvalidType},
		{"only nulls", []interface{}{nil, nil}, ErrInvalidType},
		{"map", map[string]interface{}{"a": 1}, ErrInvalidType},
		{"mixed types", []interface{}{int64(1), "a"}, ErrTypeMismatch},
		{"duplicate field", StructValue{{Name: "a", Value: 1}, {Name: "a", Value: 2}}, ErrDuplicateField},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			_, err := TypeOf(tt.value)
			require.True(t, tt.kind.Is(err), "unexpected error: %v", err)
		})
	}

	require.Panics(t, func() { MustTypeOf(nil) })
}
