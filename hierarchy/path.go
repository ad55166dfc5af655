package hierarchy

import (
	"path"
	"strings"

	"github.com/kbukum/statekit/errors"
)

// Extractor computes the hierarchical path of a node.
type Extractor func(Node) (string, error)

// SourceExtractor prefers a node's virtual path and falls back to inferring
// the path from its source location.
func SourceExtractor(cfg Config) Extractor {
	cfg.ApplyDefaults()
	return func(n Node) (string, error) {
		if vp := strings.Trim(strings.TrimSpace(n.VirtualPath()), cfg.Separator); vp != "" {
			return vp, nil
		}
		if n.SourceLocation() == "" {
			return "", errors.Configuration("%s declares neither a virtual path nor a source location", n.Name())
		}
		return PathFromSource(n.SourceLocation(), cfg)
	}
}

// PathFromSource infers a path from a source file: the source root is
// stripped, the file name dropped and the remaining directories split into
// segments.
//
//	PathFromSource("/src/app-health/manager.go", Config{SourceRoot: "/src"}) // "app.health"
func PathFromSource(file string, cfg Config) (string, error) {
	cfg.ApplyDefaults()

	file = slashed(file)
	if root := strings.TrimSuffix(slashed(cfg.SourceRoot), "/"); root != "" {
		if !strings.HasPrefix(file, root+"/") {
			return "", errors.Configuration("source %s is outside the source root %s", file, root)
		}
		file = strings.TrimPrefix(file, root+"/")
	}

	segments := strings.FieldsFunc(path.Dir(file), func(r rune) bool {
		return r == '/' || strings.ContainsRune(cfg.SegmentDelimiters, r)
	})
	if len(segments) == 0 || (len(segments) == 1 && segments[0] == ".") {
		return "", errors.Configuration("cannot infer a path from %s", file)
	}
	return strings.Join(segments, cfg.Separator), nil
}

// CommonSourceRoot returns the deepest directory that strictly contains the
// directory of every file, so that each file keeps at least one segment
// after stripping it.
func CommonSourceRoot(files []string) string {
	var common []string
	for i, f := range files {
		parent := strings.Split(path.Dir(path.Dir(slashed(f))), "/")
		if i == 0 {
			common = parent
			continue
		}
		n := 0
		for n < len(common) && n < len(parent) && common[n] == parent[n] {
			n++
		}
		common = common[:n]
	}
	root := strings.Join(common, "/")
	switch {
	case len(common) == 1 && common[0] == "":
		return "/"
	case root == ".":
		return ""
	}
	return root
}

func slashed(p string) string {
	return strings.ReplaceAll(p, `\`, "/")
}

// depth returns the number of segments in p.
func depth(p, sep string) int {
	return strings.Count(p, sep) + 1
}

// parentPaths lists the proper segment prefixes of p, longest first.
func parentPaths(p, sep string) []string {
	var out []string
	for idx := strings.LastIndex(p, sep); idx > 0; idx = strings.LastIndex(p, sep) {
		p = p[:idx]
		out = append(out, p)
	}
	return out
}
