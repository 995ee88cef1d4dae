package quad_test

import (
	"strings"
	"testing"

	"github.com/uriyay/CPLCompiler/quad"
)

func TestLoadStripsCommentsAndNumbering(t *testing.T) {
	src := `
1: IASN a 1 # set a
/* this spans
   two lines */
2: IPRT a
3: HALT
`
	p, err := quad.Load(strings.NewReader(src))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got, want := p.Len(), 3; got != want {
		t.Fatalf("Len() = %d, want %d", got, want)
	}
	if p.Code[0].Op != quad.IASN || p.Code[2].Op != quad.HALT {
		t.Errorf("unexpected instructions: %v", p.Code)
	}
}

func TestLoadMissingHalt(t *testing.T) {
	_, err := quad.Load(strings.NewReader("IASN a 1\nIPRT a\n"))
	if err == nil {
		t.Fatal("expected an error")
	}
	le, ok := err.(*quad.LoadError)
	if !ok || le.Kind != "MissingHalt" {
		t.Fatalf("err = %v, want MissingHalt LoadError", err)
	}
}

func TestLoadInvalidOp(t *testing.T) {
	_, err := quad.Load(strings.NewReader("iasn a 1\nHALT\n"))
	if err == nil {
		t.Fatal("expected an error")
	}
	le, ok := err.(*quad.LoadError)
	if !ok || le.Kind != "InvalidOp" {
		t.Fatalf("err = %v, want InvalidOp LoadError", err)
	}
}

func TestLoadInvalidOperand(t *testing.T) {
	_, err := quad.Load(strings.NewReader("IASN a 1.2.3\nHALT\n"))
	if err == nil {
		t.Fatal("expected an error")
	}
	le, ok := err.(*quad.LoadError)
	if !ok || le.Kind != "InvalidOperand" {
		t.Fatalf("err = %v, want InvalidOperand LoadError", err)
	}
}

func TestLoadStopsAfterFirstHalt(t *testing.T) {
	p, err := quad.Load(strings.NewReader("HALT\nIPRT a\nHALT\n"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if p.Len() != 1 {
		t.Fatalf("Len() = %d, want 1", p.Len())
	}
}
