package domain

import (
	"github.com/tirouscoded/yama/internal/parcel"
	"github.com/tirouscoded/yama/internal/resolve"
	"github.com/tirouscoded/yama/internal/runtimetype"
	"github.com/tirouscoded/yama/internal/typedesc"
)

// selfImportPath builds the "self[/relativePath]" import path a
// services object resolves relativePath through, so a parcel's own
// imports go through the same redirect machinery as everyone else's
// (the self head itself bypasses dep-mapping).
func selfImportPath(relativePath string) string {
	if relativePath == "" {
		return resolve.SelfName
	}
	return resolve.SelfName + "/" + relativePath
}

// parcelServices is the capability set a parcel receives while
// producing a module description: it may only Import, scoped to its
// own install-name environment. Parcels can never install or upload.
type parcelServices struct {
	d           *Domain
	installName string
}

// CreateParcelServicesFor builds the parcel.Services a backing parcel
// installed under installName receives. Exported under this name (not
// a bare method value) so it matches resolve.ServicesFactory's
// function-typed signature directly.
func (d *Domain) CreateParcelServicesFor(installName string) parcel.Services {
	return &parcelServices{d: d, installName: installName}
}

func (s *parcelServices) Import(relativePath string) (*typedesc.ModuleDescription, error) {
	return s.d.resolver.Resolve(s.installName, selfImportPath(relativePath), false)
}

// CompilerServices is the capability set an external compiler
// collaborator receives: import within its own parcel environment,
// plus load, since a compiler may need to resolve a cross-reference
// to an already-uploaded type while compiling.
type CompilerServices interface {
	Import(relativePath string) (*typedesc.ModuleDescription, error)
	Load(fullname string) (*runtimetype.Type, error)
}

type compilerServices struct {
	d           *Domain
	installName string
}

// CreateCompilerServices builds the CompilerServices scoped to the
// parcel environment installName.
func (d *Domain) CreateCompilerServices(installName string) CompilerServices {
	return &compilerServices{d: d, installName: installName}
}

func (s *compilerServices) Import(relativePath string) (*typedesc.ModuleDescription, error) {
	return s.d.resolver.Resolve(s.installName, selfImportPath(relativePath), false)
}

func (s *compilerServices) Load(fullname string) (*runtimetype.Type, error) {
	return s.d.Load(fullname)
}
