// Package install implements the install batch and dependency-graph
// validator: staging a set of install-name to parcel bindings plus
// dependency mappings, validating them, and atomically committing.
package install

import (
	"fmt"

	"github.com/tirouscoded/yama/internal/dsignal"
	"github.com/tirouscoded/yama/internal/parcel"
)

// DepMappingKey identifies one (install-name, dep-name) -> install-name
// mapping within a batch.
type DepMappingKey struct {
	InstallName string
	DepName     string
}

// Batch is an uncommitted set of installs and dependency mappings.
type Batch struct {
	order       []string
	installs    map[string]parcel.Parcel
	depMappings map[DepMappingKey]string
}

// NewBatch creates an empty install batch.
func NewBatch() *Batch {
	return &Batch{
		installs:    make(map[string]parcel.Parcel),
		depMappings: make(map[DepMappingKey]string),
	}
}

// Install stages a parcel under installName. Returns the batch for
// chaining.
func (b *Batch) Install(installName string, p parcel.Parcel) *Batch {
	if _, exists := b.installs[installName]; !exists {
		b.order = append(b.order, installName)
	}
	b.installs[installName] = p
	return b
}

// MapDep stages a (installName, depName) -> mappedTo dependency
// mapping. Returns the batch for chaining.
func (b *Batch) MapDep(installName, depName, mappedTo string) *Batch {
	b.depMappings[DepMappingKey{InstallName: installName, DepName: depName}] = mappedTo
	return b
}

// InstallNames returns the staged install-names in insertion order.
func (b *Batch) InstallNames() []string {
	out := make([]string, len(b.order))
	copy(out, b.order)
	return out
}

// Parcel returns the staged parcel for name, if any.
func (b *Batch) Parcel(name string) (parcel.Parcel, bool) {
	p, ok := b.installs[name]
	return p, ok
}

// Mapping returns the staged mapping target for (installName, depName),
// if any.
func (b *Batch) Mapping(installName, depName string) (string, bool) {
	t, ok := b.depMappings[DepMappingKey{InstallName: installName, DepName: depName}]
	return t, ok
}

// Edge is a directed dependency-graph edge between two install-names,
// ignoring which dep-name produced it.
type Edge struct {
	From, To string
}

// Graph is the view of already-committed domain state the validator
// needs: which install-names already exist, and the edges already
// established by prior commits (always acyclic, since every commit
// revalidates).
type Graph interface {
	IsInstalled(name string) bool
	ExistingEdges() []Edge
}

func violation(sig dsignal.Signal, msg string) error {
	return dsignal.Wrap(dsignal.New(sig, "install", msg))
}

// Validate runs every batch check — name conflicts, missing and
// invalid mappings, dependency cycles — and returns every violation
// found (empty slice means the batch is committable).
func (b *Batch) Validate(g Graph) []error {
	var errs []error

	// 1. Install-name conflicts.
	for _, name := range b.order {
		if g.IsInstalled(name) {
			errs = append(errs, violation(dsignal.InstallInstallNameConflict,
				fmt.Sprintf("install-name %q already installed", name)))
		}
	}

	// 2. Missing mappings: every dep-name a staged parcel declares
	// must be mapped within this batch.
	for _, name := range b.order {
		p := b.installs[name]
		for _, dep := range p.Deps() {
			if _, ok := b.depMappings[DepMappingKey{InstallName: name, DepName: dep}]; !ok {
				errs = append(errs, violation(dsignal.InstallMissingDepMapping,
					fmt.Sprintf("parcel %q declares dep %q with no mapping", name, dep)))
			}
		}
	}

	// 3. Invalid mappings.
	for key, target := range b.depMappings {
		p, ok := b.installs[key.InstallName]
		if !ok {
			errs = append(errs, violation(dsignal.InstallInvalidDepMapping,
				fmt.Sprintf("mapping references install-name %q not present in this batch", key.InstallName)))
			continue
		}
		if !declaresDep(p, key.DepName) {
			errs = append(errs, violation(dsignal.InstallInvalidDepMapping,
				fmt.Sprintf("mapping (%s, %s) references a dep not declared by %q", key.InstallName, key.DepName, key.InstallName)))
		}
		if !g.IsInstalled(target) {
			if _, inBatch := b.installs[target]; !inBatch {
				errs = append(errs, violation(dsignal.InstallInvalidDepMapping,
					fmt.Sprintf("mapping (%s, %s) targets unknown install-name %q", key.InstallName, key.DepName, target)))
			}
		}
	}

	if len(errs) > 0 {
		return errs
	}

	// 4. No cycles, across batch ∪ already-installed.
	if cycle := b.detectCycle(g); cycle != nil {
		errs = append(errs, violation(dsignal.InstallDepGraphCycle,
			fmt.Sprintf("dependency cycle: %v", cycle)))
	}

	return errs
}

func declaresDep(p parcel.Parcel, dep string) bool {
	for _, d := range p.Deps() {
		if d == dep {
			return true
		}
	}
	return false
}

// detectCycle runs a DFS with a visited set and a path stack; on
// finding a back-edge it returns the stack slice from the first
// occurrence of the revisited node to the back-edge, so diagnostics
// show the cycle itself rather than the whole exploration path.
func (b *Batch) detectCycle(g Graph) []string {
	adj := make(map[string][]string)
	nodes := make(map[string]bool)

	for _, e := range g.ExistingEdges() {
		adj[e.From] = append(adj[e.From], e.To)
		nodes[e.From] = true
		nodes[e.To] = true
	}
	for key, target := range b.depMappings {
		adj[key.InstallName] = append(adj[key.InstallName], target)
		nodes[key.InstallName] = true
		nodes[target] = true
	}
	for _, name := range b.order {
		nodes[name] = true
	}

	const (
		unvisited = 0
		inStack   = 1
		done      = 2
	)
	state := make(map[string]int, len(nodes))
	var stack []string
	var cycle []string

	var dfs func(n string) bool
	dfs = func(n string) bool {
		state[n] = inStack
		stack = append(stack, n)
		for _, next := range adj[n] {
			switch state[next] {
			case inStack:
				// Back-edge: slice from first occurrence of `next` to here.
				start := 0
				for i, s := range stack {
					if s == next {
						start = i
						break
					}
				}
				cycle = append([]string{}, stack[start:]...)
				cycle = append(cycle, next)
				return true
			case unvisited:
				if dfs(next) {
					return true
				}
			}
		}
		stack = stack[:len(stack)-1]
		state[n] = done
		return false
	}

	// Island-set short-circuit: only unprocessed nodes are explored.
	for n := range nodes {
		if state[n] == unvisited {
			if dfs(n) {
				return cycle
			}
		}
	}
	return nil
}

// CommitResult is returned by a successful commit; it names exactly
// which install-names/mappings the domain should now merge into its
// authoritative state.
type CommitResult struct {
	Installs    []string
	DepMappings map[DepMappingKey]string
}

// Commit validates the batch and, if valid, returns the data the
// caller (the domain) should merge into its authoritative maps.
// Nothing is merged by this package — the domain owns that state and
// performs the merge itself, preserving the "no partial commits"
// guarantee at the single call site that holds the authoritative
// maps.
func (b *Batch) Commit(g Graph) (*CommitResult, []error) {
	if errs := b.Validate(g); len(errs) > 0 {
		return nil, errs
	}
	return &CommitResult{
		Installs:    b.InstallNames(),
		DepMappings: b.depMappings,
	}, nil
}

// ParcelFor returns the staged parcel for an install-name named in a
// CommitResult.
func (b *Batch) ParcelFor(name string) parcel.Parcel {
	return b.installs[name]
}
