package quad_test

import (
	"testing"

	"github.com/uriyay/CPLCompiler/quad"
)

func TestInstructionString(t *testing.T) {
	in := quad.Instruction{
		Op:   quad.IADD,
		Args: []quad.Operand{quad.Temp{ID: 0, Type: quad.Int}, quad.Name{Ident: "a"}, quad.IntLiteral(3)},
	}
	want := "IADD t0 a 3"
	if got := in.String(); got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}

func TestFloatLiteralString(t *testing.T) {
	tests := []struct {
		v    float64
		want string
	}{
		{3, "3.0"},
		{0.25, "0.25"},
		{1.0, "1.0"},
	}
	for _, tt := range tests {
		got := quad.FloatLiteral(tt.v).String()
		if got != tt.want {
			t.Errorf("FloatLiteral(%v).String() = %q, want %q", tt.v, got, tt.want)
		}
	}
}

func TestProgramEmit(t *testing.T) {
	p := &quad.Program{}
	idx := p.Emit(quad.IASN, 1, quad.Name{Ident: "a"}, quad.IntLiteral(1))
	if idx != 1 {
		t.Errorf("Emit returned %d, want 1", idx)
	}
	if p.Len() != 1 {
		t.Errorf("Len() = %d, want 1", p.Len())
	}
}
