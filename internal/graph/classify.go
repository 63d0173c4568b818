package graph

import (
	"path"
	"strings"
)

var (
	codeExts         = map[string]bool{".sh": true, ".js": true, ".py": true}
	dataExts         = map[string]bool{".md": true, ".yaml": true, ".json": true}
	configSourceExts = map[string]bool{".yaml": true, ".yml": true, ".json": true}
)

// Classify labels an edge from its endpoint extensions. The "@" form wins
// over every extension rule.
func Classify(sourceExt, targetExt string, atForm bool) EdgeKind {
	switch {
	case atForm:
		return EdgeKindAtReference
	case codeExts[sourceExt] && codeExts[targetExt]:
		return EdgeKindCodeDependency
	case codeExts[sourceExt] && dataExts[targetExt]:
		return EdgeKindReadsFrom
	case sourceExt == ".md" && targetExt == ".md":
		return EdgeKindDocReference
	case sourceExt == ".md" && codeExts[targetExt]:
		return EdgeKindReferencesCode
	case configSourceExts[sourceExt]:
		return EdgeKindConfigReference
	default:
		return EdgeKindReference
	}
}

// ClassifyReference classifies using the raw snippet and both paths.
func ClassifyReference(raw, source, target string) EdgeKind {
	return Classify(Ext(source), Ext(target), strings.HasPrefix(raw, "@"))
}

// Ext returns the extension of p's final element. Leading dots do not start
// an extension, so ".mcp.json" has ".json" and ".gitignore" has none.
func Ext(p string) string {
	base := strings.TrimLeft(path.Base(p), ".")
	if i := strings.LastIndex(base, "."); i >= 0 {
		return base[i:]
	}
	return ""
}
