package install

import (
	"testing"

	"github.com/tirouscoded/yama/internal/parcel"
	"github.com/tirouscoded/yama/internal/typedesc"
)

// fakeParcel is a minimal parcel.Parcel stand-in naming a fixed set of
// dependency identifiers.
type fakeParcel struct {
	deps []string
}

func (p *fakeParcel) Deps() []string { return p.deps }

func (p *fakeParcel) Import(_ parcel.Services, relativePath string) (*typedesc.ModuleDescription, error) {
	return nil, nil
}

// fakeGraph is a minimal install.Graph stand-in over an in-memory edge
// set, used to simulate already-committed domain state.
type fakeGraph struct {
	installed map[string]bool
	edges     []Edge
}

func newFakeGraph() *fakeGraph {
	return &fakeGraph{installed: make(map[string]bool)}
}

func (g *fakeGraph) IsInstalled(name string) bool { return g.installed[name] }
func (g *fakeGraph) ExistingEdges() []Edge         { return g.edges }

func TestValidateEmptyBatchSucceeds(t *testing.T) {
	b := NewBatch()
	if errs := b.Validate(newFakeGraph()); len(errs) != 0 {
		t.Errorf("expected no errors for an empty batch, got %v", errs)
	}
}

func TestValidateRejectsInstallNameConflict(t *testing.T) {
	g := newFakeGraph()
	g.installed["already"] = true

	b := NewBatch().Install("already", &fakeParcel{})
	errs := b.Validate(g)
	if len(errs) == 0 {
		t.Fatal("expected a conflict error")
	}
}

func TestValidateRejectsMissingDepMapping(t *testing.T) {
	b := NewBatch().Install("app", &fakeParcel{deps: []string{"math"}})
	errs := b.Validate(newFakeGraph())
	if len(errs) == 0 {
		t.Fatal("expected a missing-dep-mapping error")
	}
}

func TestValidateAcceptsSatisfiedMapping(t *testing.T) {
	b := NewBatch().
		Install("math", &fakeParcel{}).
		Install("app", &fakeParcel{deps: []string{"math"}}).
		MapDep("app", "math", "math")

	if errs := b.Validate(newFakeGraph()); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestValidateRejectsMappingToUndeclaredDep(t *testing.T) {
	b := NewBatch().
		Install("math", &fakeParcel{}).
		Install("app", &fakeParcel{}). // declares no deps
		MapDep("app", "math", "math")

	errs := b.Validate(newFakeGraph())
	if len(errs) == 0 {
		t.Fatal("expected an invalid-mapping error for an undeclared dep")
	}
}

func TestValidateRejectsMappingToUnknownTarget(t *testing.T) {
	b := NewBatch().
		Install("app", &fakeParcel{deps: []string{"math"}}).
		MapDep("app", "math", "nonexistent")

	errs := b.Validate(newFakeGraph())
	if len(errs) == 0 {
		t.Fatal("expected an invalid-mapping error for an unknown target")
	}
}

func TestValidateAcceptsMappingToAlreadyInstalledTarget(t *testing.T) {
	g := newFakeGraph()
	g.installed["math"] = true

	b := NewBatch().
		Install("app", &fakeParcel{deps: []string{"math"}}).
		MapDep("app", "math", "math")

	if errs := b.Validate(g); len(errs) != 0 {
		t.Errorf("expected no errors, got %v", errs)
	}
}

func TestValidateRejectsCycleWithinBatch(t *testing.T) {
	b := NewBatch().
		Install("a", &fakeParcel{deps: []string{"b"}}).
		Install("b", &fakeParcel{deps: []string{"a"}}).
		MapDep("a", "b", "b").
		MapDep("b", "a", "a")

	errs := b.Validate(newFakeGraph())
	if len(errs) == 0 {
		t.Fatal("expected a dependency-cycle error")
	}
}

func TestValidateRejectsCycleAcrossExistingEdges(t *testing.T) {
	g := newFakeGraph()
	g.installed["a"] = true
	g.edges = []Edge{{From: "a", To: "b"}}

	b := NewBatch().
		Install("b", &fakeParcel{deps: []string{"a"}}).
		MapDep("b", "a", "a")
	// a -> b (existing) and b -> a (new) forms a cycle across the boundary.
	b.depMappings[DepMappingKey{InstallName: "b", DepName: "a"}] = "a"

	errs := b.Validate(g)
	if len(errs) == 0 {
		t.Fatal("expected a cycle spanning already-committed and staged edges")
	}
}

func TestCommitReturnsInstallsAndMappingsOnSuccess(t *testing.T) {
	b := NewBatch().
		Install("math", &fakeParcel{}).
		Install("app", &fakeParcel{deps: []string{"math"}}).
		MapDep("app", "math", "math")

	result, errs := b.Commit(newFakeGraph())
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(result.Installs) != 2 {
		t.Errorf("Installs = %v, want 2 entries", result.Installs)
	}
	if result.DepMappings[DepMappingKey{InstallName: "app", DepName: "math"}] != "math" {
		t.Error("expected the app->math mapping to be present in the commit result")
	}
}

func TestCommitFailsWithoutMutatingCaller(t *testing.T) {
	b := NewBatch().Install("app", &fakeParcel{deps: []string{"missing"}})
	result, errs := b.Commit(newFakeGraph())
	if result != nil {
		t.Error("expected a nil result on a failed commit")
	}
	if len(errs) == 0 {
		t.Error("expected validation errors on a failed commit")
	}
}

func TestInstallNamesPreservesInsertionOrder(t *testing.T) {
	b := NewBatch().
		Install("c", &fakeParcel{}).
		Install("a", &fakeParcel{}).
		Install("b", &fakeParcel{})

	got := b.InstallNames()
	want := []string{"c", "a", "b"}
	for i, n := range want {
		if got[i] != n {
			t.Errorf("InstallNames()[%d] = %q, want %q", i, got[i], n)
		}
	}
}

func TestReinstallUnderSameNameReplacesParcelWithoutDuplicatingOrder(t *testing.T) {
	p1 := &fakeParcel{}
	p2 := &fakeParcel{deps: []string{"x"}}
	b := NewBatch().Install("app", p1).Install("app", p2)

	if len(b.InstallNames()) != 1 {
		t.Errorf("expected a single order entry for a re-Install, got %v", b.InstallNames())
	}
	got, _ := b.Parcel("app")
	if got != p2 {
		t.Error("expected the second Install call to replace the staged parcel")
	}
}
