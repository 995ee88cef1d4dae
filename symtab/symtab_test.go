package symtab_test

import (
	"testing"

	"github.com/uriyay/CPLCompiler/quad"
	"github.com/uriyay/CPLCompiler/symtab"
)

func TestInsertAndLookup(t *testing.T) {
	tbl := symtab.New()
	sym := &symtab.Symbol{Name: "a", Type: quad.Int}
	if err := tbl.Insert(sym); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	got, err := tbl.Lookup("a")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if got != sym {
		t.Errorf("Lookup returned a different symbol")
	}
}

func TestInsertDuplicateFails(t *testing.T) {
	tbl := symtab.New()
	tbl.Insert(&symtab.Symbol{Name: "a", Type: quad.Int})
	err := tbl.Insert(&symtab.Symbol{Name: "a", Type: quad.Float})
	if err == nil {
		t.Fatal("expected an error for duplicate insert")
	}
}

func TestLookupNotFound(t *testing.T) {
	tbl := symtab.New()
	if _, err := tbl.Lookup("missing"); err == nil {
		t.Fatal("expected an error for missing symbol")
	}
}

func TestScopeShadowing(t *testing.T) {
	tbl := symtab.New()
	outer := &symtab.Symbol{Name: "a", Type: quad.Int}
	tbl.Insert(outer)

	tbl.PushScope()
	inner := &symtab.Symbol{Name: "a", Type: quad.Float}
	if err := tbl.Insert(inner); err != nil {
		t.Fatalf("Insert in inner scope should not conflict with outer: %v", err)
	}
	got, _ := tbl.Lookup("a")
	if got != inner {
		t.Errorf("Lookup should find the innermost shadowing symbol")
	}

	tbl.PopScope()
	got, _ = tbl.Lookup("a")
	if got != outer {
		t.Errorf("Lookup after PopScope should find the outer symbol again")
	}
}

func TestMarkAssigned(t *testing.T) {
	sym := &symtab.Symbol{Name: "a", Type: quad.Int}
	if sym.Assigned {
		t.Fatal("new symbol should start unassigned")
	}
	sym.MarkAssigned()
	if !sym.Assigned {
		t.Fatal("MarkAssigned should set Assigned")
	}
}
