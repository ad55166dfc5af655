package hierarchy

import (
	"sort"

	"github.com/kbukum/statekit/component"
	"github.com/kbukum/statekit/errors"
	"github.com/kbukum/statekit/logger"
)

// Node is a domain manager as seen by the wirer.
type Node interface {
	component.Component
	component.Container
	SourceLocation() string
	VirtualPath() string
}

// Tree is the result of wiring.
type Tree struct {
	// Root is the node whose path equals the configured root name.
	Root Node

	cfg     Config
	paths   map[string]Node
	byNode  map[Node]string
	parents map[string]string
	order   []string
}

// Path returns the path assigned to n.
func (t *Tree) Path(n Node) (string, bool) {
	p, ok := t.byNode[n]
	return p, ok
}

// Lookup returns the node at path p.
func (t *Tree) Lookup(p string) (Node, bool) {
	n, ok := t.paths[p]
	return n, ok
}

// Parent returns the path of the node p was registered under. The root has
// no parent.
func (t *Tree) Parent(p string) (string, bool) {
	parent, ok := t.parents[p]
	return parent, ok
}

// Paths returns every path in wiring order, root first.
func (t *Tree) Paths() []string {
	out := make([]string, len(t.order))
	copy(out, t.order)
	return out
}

type wireOptions struct {
	cfg       Config
	extractor Extractor
	log       *logger.Logger
}

// Option configures Wire.
type Option func(*wireOptions)

// WithConfig sets the wiring configuration.
func WithConfig(cfg Config) Option {
	return func(o *wireOptions) { o.cfg = cfg }
}

// WithExtractor replaces the default SourceExtractor.
func WithExtractor(e Extractor) Option {
	return func(o *wireOptions) { o.extractor = e }
}

// WithLogger sets the logger used while wiring.
func WithLogger(l *logger.Logger) Option {
	return func(o *wireOptions) { o.log = l }
}

// Wire assigns a path to every node and registers each non-root node under
// the node owning the longest proper prefix of its path, or under the root
// when no such node exists. Duplicate paths and a missing root are
// configuration errors.
func Wire[N Node](nodes []N, opts ...Option) (*Tree, error) {
	o := wireOptions{}
	for _, opt := range opts {
		opt(&o)
	}
	o.cfg.ApplyDefaults()
	if err := o.cfg.Validate(); err != nil {
		return nil, err
	}
	if o.log == nil {
		o.log = logger.Get("hierarchy")
	}
	if o.cfg.SourceRoot == "" {
		o.cfg.SourceRoot = CommonSourceRoot(sourcesOf(nodes))
	}
	if o.extractor == nil {
		o.extractor = SourceExtractor(o.cfg)
	}

	t := &Tree{
		cfg:     o.cfg,
		paths:   make(map[string]Node, len(nodes)),
		byNode:  make(map[Node]string, len(nodes)),
		parents: make(map[string]string, len(nodes)),
	}

	for _, n := range nodes {
		p, err := o.extractor(n)
		if err != nil {
			return nil, err
		}
		if other, exists := t.paths[p]; exists {
			return nil, errors.Configuration("%s and %s both resolve to path %q", other.Name(), n.Name(), p).
				WithDetail("path", p)
		}
		t.paths[p] = n
		t.byNode[n] = p
		t.order = append(t.order, p)
	}

	root, ok := t.paths[o.cfg.RootName]
	if !ok {
		return nil, errors.Configuration("no domain manager resolves to the root path %q", o.cfg.RootName)
	}
	t.Root = root

	sep := o.cfg.Separator
	sort.SliceStable(t.order, func(i, j int) bool {
		di, dj := depth(t.order[i], sep), depth(t.order[j], sep)
		if di != dj {
			return di < dj
		}
		return t.order[i] < t.order[j]
	})
	// The root always comes first even if a shallower path exists.
	t.order = moveToFront(t.order, o.cfg.RootName)

	for _, p := range t.order {
		if p == o.cfg.RootName {
			continue
		}
		parent := o.cfg.RootName
		for _, candidate := range parentPaths(p, sep) {
			if _, ok := t.paths[candidate]; ok {
				parent = candidate
				break
			}
		}
		if err := t.paths[parent].RegisterSubcomponent(t.paths[p]); err != nil {
			t.unwire(o.log)
			return nil, err
		}
		t.parents[p] = parent
		o.log.Debug("domain manager linked", logger.Fields(
			logger.FieldPath, p,
			logger.FieldParent, parent,
		))
	}

	o.log.Info("component hierarchy wired", logger.Fields(
		logger.FieldCount, len(t.order),
		"root", o.cfg.RootName,
	))
	return t, nil
}

// unwire removes the links made so far, deepest first, so a failed Wire
// leaves the nodes as it found them.
func (t *Tree) unwire(log *logger.Logger) {
	for i := len(t.order) - 1; i >= 0; i-- {
		p := t.order[i]
		parent, ok := t.parents[p]
		if !ok {
			continue
		}
		if _, err := t.paths[parent].UnregisterSubcomponent(t.paths[p]); err != nil {
			log.Warn("failed to unlink domain manager", logger.Fields(
				logger.FieldPath, p,
				logger.FieldError, err.Error(),
			))
		}
		delete(t.parents, p)
	}
}

func sourcesOf[N Node](nodes []N) []string {
	var files []string
	for _, n := range nodes {
		if n.VirtualPath() == "" && n.SourceLocation() != "" {
			files = append(files, n.SourceLocation())
		}
	}
	return files
}

func moveToFront(order []string, p string) []string {
	for i, v := range order {
		if v == p {
			copy(order[1:i+1], order[:i])
			order[0] = p
			break
		}
	}
	return order
}
