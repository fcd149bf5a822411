package model

// WildcardSideEffectFree is the substring that matches every module name.
// Listing it in SideEffectFreeModules tells the pipeline to assume all
// transitive dependencies are free of import-time side effects.
const WildcardSideEffectFree = ""

// Config holds every option the extraction pipeline accepts. A Config is
// built once per invocation and never mutated afterwards; per-test-case
// adjustments go through Overrides.With.
type Config struct {
	// Cwd is the directory relative module references are resolved against.
	// Empty means the process working directory.
	Cwd Path

	// Output is the file the residual code is written to, together with an
	// accompanying source map. Empty means the residue is returned in memory.
	Output Path

	// PureGetters assumes property reads have no side effects, allowing the
	// pipeline to drop residual statements that only read properties.
	PureGetters bool

	// Define maps global identifier names to literal replacement values used
	// for constant folding, e.g. {"ngDevMode": "false"}.
	Define map[string]string

	// SideEffectFreeModules lists module-name substrings whose matching
	// modules are assumed side-effect free. An empty-string entry is a
	// wildcard matching everything. The target modules themselves are always
	// exempt, otherwise there would be nothing left to observe.
	SideEffectFreeModules []string

	// ResolveExternals bundles externally-referenced packages into the graph
	// instead of leaving their imports in place.
	ResolveExternals bool

	// EmitDependencies makes the pipeline report every file the module graph
	// walk visited.
	EmitDependencies bool

	// UseAnnotator marks known compiler-generated helper calls as pure so
	// the eliminator can remove them.
	UseAnnotator bool

	// UseMinifier enables constant folding, conditional simplification and
	// dead-branch removal. Identifier renaming is never applied.
	UseMinifier bool

	// Warnings surfaces build warnings instead of suppressing them.
	Warnings bool
}

// DefaultConfig returns the documented defaults: in-memory output, pure
// property reads, every dependency assumed side-effect free, annotator and
// minifier on, warnings suppressed.
func DefaultConfig() Config {
	return Config{
		PureGetters:           true,
		Define:                map[string]string{},
		SideEffectFreeModules: []string{WildcardSideEffectFree},
		UseAnnotator:          true,
		UseMinifier:           true,
	}
}

// Overrides is a partial Config used by test cases to overlay specific
// options on the suite defaults. Nil fields keep the default value.
type Overrides struct {
	PureGetters           *bool             `yaml:"pureGetters,omitempty"`
	Define                map[string]string `yaml:"define,omitempty"`
	SideEffectFreeModules *[]string         `yaml:"sideEffectFreeModules,omitempty"`
	ResolveExternals      *bool             `yaml:"resolveExternals,omitempty"`
	EmitDependencies      *bool             `yaml:"printDependencies,omitempty"`
	UseAnnotator          *bool             `yaml:"annotator,omitempty"`
	UseMinifier           *bool             `yaml:"minifier,omitempty"`
	Warnings              *bool             `yaml:"warnings,omitempty"`
}

// With returns a copy of c with every non-nil override applied.
func (c Config) With(o Overrides) Config {
	out := c

	out.Define = make(map[string]string, len(c.Define)+len(o.Define))
	for k, v := range c.Define {
		out.Define[k] = v
	}
	for k, v := range o.Define {
		out.Define[k] = v
	}

	if o.PureGetters != nil {
		out.PureGetters = *o.PureGetters
	}
	if o.SideEffectFreeModules != nil {
		out.SideEffectFreeModules = append([]string(nil), (*o.SideEffectFreeModules)...)
	}
	if o.ResolveExternals != nil {
		out.ResolveExternals = *o.ResolveExternals
	}
	if o.EmitDependencies != nil {
		out.EmitDependencies = *o.EmitDependencies
	}
	if o.UseAnnotator != nil {
		out.UseAnnotator = *o.UseAnnotator
	}
	if o.UseMinifier != nil {
		out.UseMinifier = *o.UseMinifier
	}
	if o.Warnings != nil {
		out.Warnings = *o.Warnings
	}

	return out
}
