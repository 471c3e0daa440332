// Package builtinparcel is the built-in primitive-type parcel every
// domain installs at FinishSetup. It has no dependencies and its root
// module never changes between domains.
package builtinparcel

import (
	"github.com/tirouscoded/yama/internal/parcel"
	"github.com/tirouscoded/yama/internal/specifier"
	"github.com/tirouscoded/yama/internal/typedesc"
)

// InstallName is the conventional install-name the domain uploads this
// parcel under; every parcel's dep-mapping for the reserved builtin
// names resolves here.
const InstallName = "builtin"

// Names is every unqualified name this parcel's root module exports.
var Names = []string{"none", "int", "uint", "float", "bool", "char", "type"}

var tagOf = map[string]typedesc.PrimitiveTag{
	"none":  typedesc.PNone,
	"int":   typedesc.PInt,
	"uint":  typedesc.PUint,
	"float": typedesc.PFloat,
	"bool":  typedesc.PBool,
	"char":  typedesc.PChar,
	"type":  typedesc.PType,
}

// Parcel is the stateless builtin-type source. Its root module is
// built once and reused for every Import call, since it's immutable
// and carries no per-domain state.
type Parcel struct {
	root *typedesc.ModuleDescription
}

// New builds the builtin parcel's root module once.
func New() (*Parcel, error) {
	md := typedesc.NewModuleDescription()
	for _, name := range Names {
		un, err := specifier.ParseUnqualifiedName(name)
		if err != nil {
			return nil, err
		}
		if err := md.Add(typedesc.NewPrimitive(un, tagOf[name])); err != nil {
			return nil, err
		}
	}
	return &Parcel{root: md}, nil
}

// Deps is always empty: the builtin parcel names no dependencies.
func (p *Parcel) Deps() []string { return nil }

// Import returns the root module for relativePath == "" and (nil,
// nil) for anything else — the builtin parcel has no submodules.
func (p *Parcel) Import(_ parcel.Services, relativePath string) (*typedesc.ModuleDescription, error) {
	if relativePath != "" {
		return nil, nil
	}
	return p.root, nil
}
