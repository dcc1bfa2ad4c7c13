package canonical

import (
	"bytes"
	"math"
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/require"
)

// TestCanonicalVectors pins the wire format against a golden vector file.
// Every independent implementation of the canonical serializer must
// reproduce these bytes bit-for-bit; treat a diff here as a wire-format
// break, not a test to update.
func TestCanonicalVectors(t *testing.T) {
	vectors := []struct {
		name  string
		input Value
	}{
		{"null", Null{}},
		{"bool", Bool(true)},
		{"negzero", Number(math.Copysign(0, -1))},
		{"nan", Number(math.NaN())},
		{"int", Number(42)},
		{"float", Number(3.14)},
		{"big", Number(1e21)},
		{"small", Number(9.5e-7)},
		{"sixdp", Number(1e-6)},
		{"escapes", String("line\nbreak\ttab")},
		{"control", String("\x01")},
		{"html", String("<a>&")},
		{"sorted", Object{"c": Number(3), "a": Number(1), "b": Number(2)}},
		{"array", Array{Number(3), Number(1), Number(2)}},
		{"nested", Object{"z": Array{Object{"b": Bool(false), "a": Null{}}}, "a": String("x")}},
	}

	var out bytes.Buffer
	for _, v := range vectors {
		b, err := Marshal(v.input)
		require.NoError(t, err)
		out.WriteString(v.name)
		out.WriteByte(' ')
		out.Write(b)
		out.WriteByte('\n')
	}

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "vectors", out.Bytes())
}
