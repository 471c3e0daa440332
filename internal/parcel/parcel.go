// Package parcel defines the Parcel interface: the external producer
// of module descriptions a domain installs under an install-name.
package parcel

import "github.com/tirouscoded/yama/internal/typedesc"

// Services is the narrow capability a parcel is given while producing
// a module description: it may only import modules within its own
// install-name environment, never install or upload.
type Services interface {
	// Import resolves relativePath in the calling parcel's own
	// environment and returns its module description.
	Import(relativePath string) (*typedesc.ModuleDescription, error)
}

// Parcel is an external module source installed into a domain under
// an install-name the parcel itself never learns.
type Parcel interface {
	// Deps returns the ordered set of dependency identifier names this
	// parcel declares. Every name here must be mapped by the install
	// batch that installs this parcel.
	Deps() []string

	// Import produces the module description for relativePath (the
	// root module uses relativePath == ""), or (nil, nil) if no module
	// exists at that path.
	Import(services Services, relativePath string) (*typedesc.ModuleDescription, error)
}
