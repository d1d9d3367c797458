package primitive

import (
	"encoding"
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// Format renders v in its canonical textual form according to kind.
// The only error source is a failing encoding.TextMarshaler.
func Format(kind KindEnum, v reflect.Value) (string, error) {
	switch {
	case kind.IsSigned():
		return strconv.FormatInt(v.Int(), 10), nil

	case kind.IsUnsigned():
		return strconv.FormatUint(v.Uint(), 10), nil

	case kind.IsFloat():
		bits := 64
		if kind == KindFloat32 {
			bits = 32
		}

		return strconv.FormatFloat(v.Float(), 'f', -1, bits), nil
	}

	switch kind {
	case KindBool:
		return strconv.FormatBool(v.Bool()), nil

	case KindString:
		return v.String(), nil

	case KindBytes:
		return string(v.Bytes()), nil

	case KindTime:
		return v.Interface().(time.Time).Format(time.RFC3339Nano), nil

	case KindDuration:
		return time.Duration(v.Int()).String(), nil

	case KindText:
		return formatText(v)

	default:
		return "", fmt.Errorf("primitive: cannot format %s as %s", v.Type(), kind)
	}
}

func formatText(v reflect.Value) (string, error) {
	var m encoding.TextMarshaler
	if tm, ok := v.Interface().(encoding.TextMarshaler); ok {
		m = tm
	} else {
		// pointer receiver: copy into an addressable value
		ptr := reflect.New(v.Type())
		ptr.Elem().Set(v)
		m = ptr.Interface().(encoding.TextMarshaler)
	}

	b, err := m.MarshalText()
	if err != nil {
		return "", err
	}

	return string(b), nil
}
