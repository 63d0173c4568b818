//go:build !cgo

package extract

// Without cgo there are no tree-sitter grammars; the code-literal channel
// stays off.
func newLiteralScanner() literalScanner { return nil }
