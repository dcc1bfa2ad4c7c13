package canonical

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalScalars(t *testing.T) {
	tests := []struct {
		name     string
		input    Value
		expected string
	}{
		{"null", Null{}, "null"},
		{"true", Bool(true), "true"},
		{"false", Bool(false), "false"},
		{"string", String("hello"), `"hello"`},
		{"empty string", String(""), `""`},
		{"int", Number(42), "42"},
		{"negative int", Number(-100), "-100"},
		{"zero", Number(0), "0"},
		{"float", Number(3.14), "3.14"},
		{"empty array", Array{}, "[]"},
		{"empty object", Object{}, "{}"},
		{"array of numbers", Array{Number(1), Number(2), Number(3)}, "[1,2,3]"},
		{"simple object", Object{"a": Number(1)}, `{"a":1}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Marshal(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalNumberEdgeCases(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{"negative zero", math.Copysign(0, -1), "0"},
		{"nan", math.NaN(), "null"},
		{"positive infinity", math.Inf(1), "null"},
		{"negative infinity", math.Inf(-1), "null"},
		{"exponent threshold", 1e21, "1e+21"},
		{"just below threshold", 1e20, "100000000000000000000"},
		{"small exponent", 9.5e-7, "9.5e-7"},
		{"smallest decimal", 1e-6, "0.000001"},
		{"negative exponent form", -1.5e-9, "-1.5e-9"},
		{"large mantissa", 1.2e21, "1.2e+21"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Marshal(Number(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalSortedKeys(t *testing.T) {
	obj := Object{
		"zebra": Number(1),
		"alpha": Number(2),
		"beta":  Number(3),
	}

	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":2,"beta":3,"zebra":1}`, string(result))
}

func TestMarshalNestedSortedKeys(t *testing.T) {
	obj := Object{
		"z": Object{"b": Number(1), "a": Number(2)},
		"a": Number(3),
	}

	result, err := Marshal(obj)
	require.NoError(t, err)
	assert.Equal(t, `{"a":3,"z":{"a":2,"b":1}}`, string(result))
}

func TestMarshalUTF16Ordering(t *testing.T) {
	// U+E000 vs U+10000: UTF-16 code-unit order differs from UTF-8 byte
	// order because U+10000 encodes as the surrogate pair D800 DC00.
	obj := Object{
		"": Number(1),
		"𐀀":      Number(2),
	}

	result, err := Marshal(obj)
	require.NoError(t, err)

	// 0xD800 < 0xE000, so the supplementary-plane key sorts first.
	expected := `{"𐀀":2,"` + "" + `":1}`
	assert.Equal(t, expected, string(result))
}

func TestMarshalStringEscapes(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"named escapes", "a\b\t\n\f\rb", `"a\b\t\n\f\rb"`},
		{"quote and backslash", `say "hi" \ bye`, `"say \"hi\" \\ bye"`},
		{"other control", "\x01\x1f", `""`},
		{"no html escaping", "<a>&</a>", `"<a>&</a>"`},
		{"line separators literal", "a b c", "\"a b c\""},
		{"multibyte preserved", "héllo 世界", `"héllo 世界"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Marshal(String(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(result))
		})
	}
}

func TestMarshalArrayOrderPreserved(t *testing.T) {
	arr := Array{Number(3), Number(1), Number(2)}

	result, err := Marshal(arr)
	require.NoError(t, err)
	assert.Equal(t, "[3,1,2]", string(result))
}

func TestMarshalDeterministic(t *testing.T) {
	obj := Object{
		"findings": Array{Object{"id": String("f1"), "severity": String("BLOCK")}},
		"count":    Number(1),
		"nested":   Object{"y": Bool(true), "x": Null{}},
	}

	first, err := Marshal(obj)
	require.NoError(t, err)

	for i := 0; i < 50; i++ {
		again, err := Marshal(obj)
		require.NoError(t, err)
		assert.Equal(t, string(first), string(again))
	}
}

func TestDecodeRoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		canonical string
	}{
		{"object keys reordered", `{"c":3,"a":1,"b":2}`, `{"a":1,"b":2,"c":3}`},
		{"whitespace dropped", `{ "a" : [ 1 , 2 ] }`, `{"a":[1,2]}`},
		{"number form normalized", `{"n":1e3}`, `{"n":1000}`},
		{"null preserved", `{"x":null}`, `{"x":null}`},
		{"nested", `[{"b":2,"a":1},true,null,"s"]`, `[{"a":1,"b":2},true,null,"s"]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Decode([]byte(tt.input))
			require.NoError(t, err)
			out, err := Marshal(v)
			require.NoError(t, err)
			assert.Equal(t, tt.canonical, string(out))
		})
	}
}

func TestDecodeRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "{", `{"a":}`, "[1,2", `"unterminated`} {
		_, err := Decode([]byte(input))
		assert.Error(t, err, "input %q should not decode", input)
	}
}

func TestFromGoNumericWidening(t *testing.T) {
	v, err := FromGo(map[string]any{
		"i":   int(7),
		"i64": int64(8),
		"f":   float64(9.5),
	})
	require.NoError(t, err)

	out, err := Marshal(v)
	require.NoError(t, err)
	assert.Equal(t, `{"f":9.5,"i":7,"i64":8}`, string(out))
}

func TestFromGoRejectsUnsupported(t *testing.T) {
	_, err := FromGo(struct{ X int }{1})
	assert.Error(t, err)
}
