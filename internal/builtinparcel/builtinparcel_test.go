package builtinparcel

import "testing"

func TestNewBuildsEveryPrimitive(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}

	md, err := p.Import(nil, "")
	if err != nil {
		t.Fatalf("Import(\"\"): unexpected error: %v", err)
	}
	if md == nil {
		t.Fatal("Import(\"\") returned a nil root module")
	}
	if md.Len() != len(Names) {
		t.Errorf("root module has %d types, want %d", md.Len(), len(Names))
	}
	for _, name := range Names {
		td, ok := md.Get(name)
		if !ok {
			t.Errorf("root module is missing %q", name)
			continue
		}
		if td.PrimitiveTag != tagOf[name] {
			t.Errorf("%q has tag %v, want %v", name, td.PrimitiveTag, tagOf[name])
		}
	}
}

func TestImportNonRootPathReturnsNilNil(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	md, err := p.Import(nil, "nested")
	if err != nil || md != nil {
		t.Errorf("Import(\"nested\") = (%v, %v), want (nil, nil)", md, err)
	}
}

func TestDepsIsAlwaysEmpty(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	if deps := p.Deps(); deps != nil {
		t.Errorf("Deps() = %v, want nil", deps)
	}
}

func TestRootModuleIsSharedAcrossImportCalls(t *testing.T) {
	p, err := New()
	if err != nil {
		t.Fatalf("New: unexpected error: %v", err)
	}
	a, _ := p.Import(nil, "")
	b, _ := p.Import(nil, "")
	if a != b {
		t.Error("expected Import(\"\") to return the same root module instance every time")
	}
}
