// Package compiler declares the minimal interface the domain façade
// needs from an external surface-language compiler. The core never
// parses source text itself; this interface is the entire seam.
//
// No concrete implementation ships here. Callers wire in whatever
// front end they have; tests wire in a fake.
package compiler

import "github.com/tirouscoded/yama/internal/typedesc"

// Compiler turns surface-language source text into a module
// description ready for the domain's upload path. Compile errors are
// the compiler's own dsignal-tagged errors (compile_syntax_error,
// compile_file_not_found, …); the domain surfaces them unchanged.
type Compiler interface {
	Compile(source string) (*typedesc.ModuleDescription, error)
}
