package primitive

import (
	"errors"
	"math"
	"net"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingText struct{}

func (failingText) MarshalText() ([]byte, error) { return nil, errors.New("boom") }

type ptrText struct{ n int }

func (p *ptrText) MarshalText() ([]byte, error) { return []byte("ptr"), nil }

func TestFormat(t *testing.T) {
	type Count int

	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"int", 2020, "2020"},
		{"negative int", int32(-7), "-7"},
		{"int64 min", int64(math.MinInt64), "-9223372036854775808"},
		{"uint64 max", uint64(math.MaxUint64), "18446744073709551615"},
		{"named int", Count(5), "5"},
		{"float64", 1.5, "1.5"},
		{"float64 no exponent", 1e21, "1000000000000000000000"},
		{"float32", float32(0.1), "0.1"},
		{"bool", true, "true"},
		{"string", "New Year's Day", "New Year's Day"},
		{"bytes", []byte("raw"), "raw"},
		{"duration", 2*time.Hour + 45*time.Minute, "2h45m0s"},
		{"time", time.Date(2020, 1, 1, 10, 40, 3, 0, time.UTC), "2020-01-01T10:40:03Z"},
		{"text marshaler", net.IPv4(10, 0, 0, 1), "10.0.0.1"},
		{"pointer receiver text marshaler", ptrText{}, "ptr"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := reflect.ValueOf(tt.value)
			kind := FromReflectType(v.Type())
			require.NotZero(t, kind)

			got, err := Format(kind, v)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestFormat_TextMarshalerError(t *testing.T) {
	v := reflect.ValueOf(failingText{})
	_, err := Format(KindText, v)
	assert.EqualError(t, err, "boom")
}

func TestFormat_UnknownKind(t *testing.T) {
	_, err := Format(0, reflect.ValueOf(struct{}{}))
	assert.Error(t, err)
}

func TestKindEnum_Predicates(t *testing.T) {
	assert.True(t, KindInt8.IsNumber())
	assert.True(t, KindInt8.IsSigned())
	assert.False(t, KindInt8.IsUnsigned())
	assert.True(t, KindUint16.IsUnsigned())
	assert.True(t, KindFloat32.IsFloat())
	assert.False(t, KindString.IsNumber())
	assert.False(t, KindText.IsFloat())
}
