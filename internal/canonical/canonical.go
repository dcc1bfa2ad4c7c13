package canonical

import (
	"bytes"
	"fmt"
)

// Marshal produces the canonical byte form of a value.
// This is the ONLY serialization that may feed a content hash: identical
// logical values must yield byte-identical output here regardless of
// producer, platform, or map iteration order.
func Marshal(v Value) ([]byte, error) {
	var buf bytes.Buffer
	if err := marshalValue(&buf, v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// MarshalGo is a convenience wrapper that converts a plain Go value via
// FromGo before marshaling.
func MarshalGo(v any) ([]byte, error) {
	cv, err := FromGo(v)
	if err != nil {
		return nil, err
	}
	return Marshal(cv)
}

func marshalValue(buf *bytes.Buffer, v Value) error {
	switch val := v.(type) {
	case nil:
		// A nil Value slot behaves like an explicit null.
		buf.WriteString("null")
		return nil
	case Null:
		buf.WriteString("null")
		return nil
	case Bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
		return nil
	case Number:
		buf.WriteString(formatNumber(float64(val)))
		return nil
	case String:
		appendEscaped(buf, string(val))
		return nil
	case Array:
		return marshalArray(buf, val)
	case Object:
		return marshalObject(buf, val)
	default:
		return fmt.Errorf("unknown canonical value type: %T", v)
	}
}

func marshalArray(buf *bytes.Buffer, arr Array) error {
	buf.WriteByte('[')
	for i, elem := range arr {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := marshalValue(buf, elem); err != nil {
			return fmt.Errorf("array[%d]: %w", i, err)
		}
	}
	buf.WriteByte(']')
	return nil
}

func marshalObject(buf *bytes.Buffer, obj Object) error {
	buf.WriteByte('{')
	for i, k := range obj.SortedKeys() {
		if i > 0 {
			buf.WriteByte(',')
		}
		appendEscaped(buf, k)
		buf.WriteByte(':')
		if err := marshalValue(buf, obj[k]); err != nil {
			return fmt.Errorf("value for key %q: %w", k, err)
		}
	}
	buf.WriteByte('}')
	return nil
}

// appendEscaped writes a string in its canonical quoted form.
//
// Escape table (fixed, wire-format contract):
//
//	"  -> \"
//	\  -> \\
//	\b \t \n \f \r by name
//	other control codes below 0x20 -> \u00XX with lowercase hex digits
//
// Everything else is emitted literally as UTF-8, including < > & and
// U+2028/U+2029. No HTML escaping, ever - the producer does not escape
// them and a byte of difference is a hash of difference.
func appendEscaped(buf *bytes.Buffer, s string) {
	buf.WriteByte('"')
	for _, b := range []byte(s) {
		switch b {
		case '"':
			buf.WriteString(`\"`)
		case '\\':
			buf.WriteString(`\\`)
		case '\b':
			buf.WriteString(`\b`)
		case '\t':
			buf.WriteString(`\t`)
		case '\n':
			buf.WriteString(`\n`)
		case '\f':
			buf.WriteString(`\f`)
		case '\r':
			buf.WriteString(`\r`)
		default:
			if b < 0x20 {
				const hexDigits = "0123456789abcdef"
				buf.WriteString(`\u00`)
				buf.WriteByte(hexDigits[b>>4])
				buf.WriteByte(hexDigits[b&0xf])
			} else {
				buf.WriteByte(b)
			}
		}
	}
	buf.WriteByte('"')
}
