package domain

import (
	"fmt"

	"github.com/tirouscoded/yama/internal/builtinparcel"
	"github.com/tirouscoded/yama/internal/debugsink"
	"github.com/tirouscoded/yama/internal/install"
	"github.com/tirouscoded/yama/internal/runtimetype"
)

// FinishSetup installs the built-in primitive-type parcel and loads
// every primitive name, caching the handles LoadNone/LoadInt/... hand
// out. Must be called before any parcel that expects to reference a
// primitive type through a dep-name mapped to the builtin
// install-name. Calling it again is a no-op.
func (d *Domain) FinishSetup() error {
	if d.IsInstalled(builtinparcel.InstallName) {
		return nil
	}

	p, err := builtinparcel.New()
	if err != nil {
		return err
	}

	batch := install.NewBatch().Install(builtinparcel.InstallName, p)
	if errs := d.Install(batch); len(errs) > 0 {
		return errs[0]
	}

	for _, name := range builtinparcel.Names {
		fullname := fmt.Sprintf("%s:%s", builtinparcel.InstallName, name)
		t, err := d.Load(fullname)
		if err != nil {
			return err
		}
		d.builtins[name] = t
	}

	d.sink.Log(debugsink.CategoryDomain, "finish_setup: loaded %d built-in primitives", len(d.builtins))
	return nil
}

func (d *Domain) builtin(name string) *runtimetype.Type { return d.builtins[name] }

// LoadNone returns the cached "none" primitive type handle.
func (d *Domain) LoadNone() *runtimetype.Type { return d.builtin("none") }

// LoadInt returns the cached "int" primitive type handle.
func (d *Domain) LoadInt() *runtimetype.Type { return d.builtin("int") }

// LoadUint returns the cached "uint" primitive type handle.
func (d *Domain) LoadUint() *runtimetype.Type { return d.builtin("uint") }

// LoadFloat returns the cached "float" primitive type handle.
func (d *Domain) LoadFloat() *runtimetype.Type { return d.builtin("float") }

// LoadBool returns the cached "bool" primitive type handle.
func (d *Domain) LoadBool() *runtimetype.Type { return d.builtin("bool") }

// LoadChar returns the cached "char" primitive type handle.
func (d *Domain) LoadChar() *runtimetype.Type { return d.builtin("char") }
