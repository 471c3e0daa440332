package domain

import (
	"testing"

	"github.com/tirouscoded/yama/internal/bytecode"
	"github.com/tirouscoded/yama/internal/consttable"
	"github.com/tirouscoded/yama/internal/debugsink"
	"github.com/tirouscoded/yama/internal/dsignal"
	"github.com/tirouscoded/yama/internal/install"
	"github.com/tirouscoded/yama/internal/parcel"
	"github.com/tirouscoded/yama/internal/specifier"
	"github.com/tirouscoded/yama/internal/typedesc"
	"github.com/tirouscoded/yama/internal/yamaconfig"
)

func mustUnqualified(t *testing.T, s string) specifier.UnqualifiedName {
	t.Helper()
	n, err := specifier.ParseUnqualifiedName(s)
	if err != nil {
		t.Fatalf("ParseUnqualifiedName(%q): %v", s, err)
	}
	return n
}

func mustQN(t *testing.T, s string) specifier.QualifiedName {
	t.Helper()
	qn, err := specifier.ParseQualifiedName(s)
	if err != nil {
		t.Fatalf("ParseQualifiedName(%q): %v", s, err)
	}
	return qn
}

// stubParcel is a fixed single-module parcel for domain-level tests.
type stubParcel struct {
	deps []string
	root *typedesc.ModuleDescription
}

func (p *stubParcel) Deps() []string { return p.deps }

func (p *stubParcel) Import(_ parcel.Services, relativePath string) (*typedesc.ModuleDescription, error) {
	if relativePath != "" {
		return nil, nil
	}
	return p.root, nil
}

func newDomain(t *testing.T) (*Domain, *debugsink.Buffer) {
	t.Helper()
	sink := debugsink.NewBuffer()
	d := New(yamaconfig.DefaultConfig(), sink, nil)
	return d, sink
}

func TestFinishSetupInstallsBuiltinAndCachesPrimitives(t *testing.T) {
	d, _ := newDomain(t)
	if err := d.FinishSetup(); err != nil {
		t.Fatalf("FinishSetup: unexpected error: %v", err)
	}
	if d.InstallCount() != 1 {
		t.Errorf("InstallCount() = %d, want 1", d.InstallCount())
	}
	if d.LoadInt() == nil || d.LoadBool() == nil || d.LoadNone() == nil {
		t.Error("expected cached primitive handles after FinishSetup")
	}
	if d.LoadInt().Kind != typedesc.Primitive {
		t.Errorf("LoadInt().Kind = %v, want Primitive", d.LoadInt().Kind)
	}
}

func TestFinishSetupIsIdempotent(t *testing.T) {
	d, _ := newDomain(t)
	if err := d.FinishSetup(); err != nil {
		t.Fatalf("first FinishSetup: %v", err)
	}
	if err := d.FinishSetup(); err != nil {
		t.Fatalf("second FinishSetup: %v", err)
	}
	if d.InstallCount() != 1 {
		t.Errorf("InstallCount() = %d, want 1 (re-running FinishSetup must not reinstall)", d.InstallCount())
	}
}

func TestInstallRejectsUnsatisfiedDepMapping(t *testing.T) {
	d, sink := newDomain(t)
	batch := install.NewBatch().Install("app", &stubParcel{deps: []string{"math"}})

	errs := d.Install(batch)
	if len(errs) == 0 {
		t.Fatal("expected a missing-dep-mapping error")
	}
	if d.IsInstalled("app") {
		t.Error("a failed Install must not mutate domain state")
	}
	if len(sink.RaisedSignals()) == 0 {
		t.Error("expected the sink to observe the validation failure")
	}
}

func TestInstallAndImportRoundTrip(t *testing.T) {
	d, _ := newDomain(t)
	root := typedesc.NewModuleDescription()
	_ = root.Add(typedesc.NewPrimitive(mustUnqualified(t, "Thing"), typedesc.PInt))

	batch := install.NewBatch().Install("app", &stubParcel{root: root})
	if errs := d.Install(batch); len(errs) != 0 {
		t.Fatalf("Install: unexpected errors: %v", errs)
	}
	if !d.IsInstalled("app") {
		t.Error("expected app to be installed")
	}
	if got := d.InstalledNames(); len(got) != 1 || got[0] != "app" {
		t.Errorf("InstalledNames() = %v, want [app]", got)
	}

	md, err := d.Import("app")
	if err != nil {
		t.Fatalf("Import: unexpected error: %v", err)
	}
	if md.Len() != 1 {
		t.Errorf("imported module has %d types, want 1", md.Len())
	}
}

func TestLoadInstantiatesAndCommits(t *testing.T) {
	d, _ := newDomain(t)
	if err := d.FinishSetup(); err != nil {
		t.Fatalf("FinishSetup: %v", err)
	}

	root := typedesc.NewModuleDescription()
	ct := consttable.New()
	if _, err := ct.AppendPrimitiveType(mustQN(t, "prim:int")); err != nil {
		t.Fatalf("AppendPrimitiveType: %v", err)
	}
	_ = root.Add(typedesc.NewStruct(mustUnqualified(t, "Holder"), ct))

	batch := install.NewBatch().
		Install("app", &stubParcel{deps: []string{"prim"}, root: root}).
		MapDep("app", "prim", "builtin")
	if errs := d.Install(batch); len(errs) != 0 {
		t.Fatalf("Install: unexpected errors: %v", errs)
	}

	got, err := d.Load("app:Holder")
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	if got.Kind != typedesc.Struct {
		t.Errorf("got.Kind = %v, want Struct", got.Kind)
	}

	// A second Load must hit the committed cache rather than re-instantiating.
	again, err := d.Load("app:Holder")
	if err != nil {
		t.Fatalf("second Load: unexpected error: %v", err)
	}
	if again != got {
		t.Error("expected the second Load to return the same committed Type")
	}
}

func TestLoadedReturnTypeIsIdenticalToDepMappedPrimitive(t *testing.T) {
	d, _ := newDomain(t)
	if err := d.FinishSetup(); err != nil {
		t.Fatalf("FinishSetup: %v", err)
	}

	// f's return type names "alt:int"; "alt" is p's dep-name, mapped to
	// the builtin parcel at install time.
	ct := consttable.New()
	intIdx, err := ct.AppendPrimitiveType(mustQN(t, "alt:int"))
	if err != nil {
		t.Fatalf("AppendPrimitiveType: %v", err)
	}
	td, err := typedesc.NewCallable(typedesc.Function, mustUnqualified(t, "f"), ct, typedesc.CallableInfo{
		Callsig:      consttable.Callsig{Return: intIdx},
		MaxLocals:    1,
		CallBehavior: typedesc.Native,
	})
	if err != nil {
		t.Fatalf("NewCallable: %v", err)
	}
	root := typedesc.NewModuleDescription()
	_ = root.Add(td)

	batch := install.NewBatch().
		Install("p", &stubParcel{deps: []string{"alt"}, root: root}).
		MapDep("p", "alt", "builtin")
	if errs := d.Install(batch); len(errs) != 0 {
		t.Fatalf("Install: unexpected errors: %v", errs)
	}

	f, err := d.Load("p:f")
	if err != nil {
		t.Fatalf("Load: unexpected error: %v", err)
	}
	if f.Callsig == nil || f.Callsig.Return != d.LoadInt() {
		t.Error("f's resolved return type must be the identical builtin int handle")
	}

	// A redirect added after p's first load must not change its
	// resolutions: p's redirect set locked on first use.
	d.AddRedirect("p", "alt", "other")
	again, err := d.Load("p:f")
	if err != nil {
		t.Fatalf("Load after AddRedirect: unexpected error: %v", err)
	}
	if again.Callsig.Return != d.LoadInt() {
		t.Error("a post-load redirect must not change f's already-resolved return type")
	}
}

func TestLoadUnknownFullnameFails(t *testing.T) {
	d, _ := newDomain(t)
	if err := d.FinishSetup(); err != nil {
		t.Fatalf("FinishSetup: %v", err)
	}
	if _, err := d.Load("nope:Ghost"); err == nil {
		t.Error("expected an error loading an unresolvable fullname")
	}
}

func TestUploadSourceFailsWithoutCompilerWired(t *testing.T) {
	d, _ := newDomain(t)
	if err := d.FinishSetup(); err != nil {
		t.Fatalf("FinishSetup: %v", err)
	}
	_, err := d.UploadSource(builtinInstallName(), "extra", "source text")
	if err == nil {
		t.Fatal("expected an error: no compiler collaborator is wired in")
	}
	rep, ok := dsignal.As(err)
	if !ok || rep.Code != dsignal.DomainNoCompiler {
		t.Errorf("expected dsignal.DomainNoCompiler, got %v", err)
	}
}

func TestUploadModuleRejectsMaxLocalsCeilingViolation(t *testing.T) {
	cfg := yamaconfig.DefaultConfig()
	cfg.MaxLocalsCeiling = 1
	sink := debugsink.NewBuffer()
	d := New(cfg, sink, nil)
	if err := d.FinishSetup(); err != nil {
		t.Fatalf("FinishSetup: %v", err)
	}

	ct := consttable.New()
	info := typedesc.CallableInfo{
		MaxLocals:    2,
		CallBehavior: typedesc.Bytecode,
		Code:         bytecode.Code{{Op: bytecode.Ret, A: 0}},
	}
	td, err := typedesc.NewCallable(typedesc.Function, mustUnqualified(t, "big"), ct, info)
	if err != nil {
		t.Fatalf("NewCallable: %v", err)
	}

	_, err = d.UploadDescription(builtinInstallName(), "extra", td)
	if err == nil {
		t.Fatal("expected a max-locals-ceiling error")
	}
	rep, ok := dsignal.As(err)
	if !ok || rep.Code != dsignal.DomainMaxLocalsCeilingExceeded {
		t.Errorf("expected dsignal.DomainMaxLocalsCeilingExceeded, got %v", err)
	}
}

func TestUploadModuleRejectsUnknownInstallName(t *testing.T) {
	d, _ := newDomain(t)
	md := typedesc.NewModuleDescription()
	_, err := d.UploadModule("nosuchparcel", "extra", md)
	if err == nil {
		t.Fatal("expected an error uploading against an uninstalled install-name")
	}
}

func builtinInstallName() string { return "builtin" }
