package extract

// literalScanner returns the string literals of a code file.
type literalScanner interface {
	Supports(ext string) bool
	Literals(ext string, source []byte) ([]string, error)
}

// CodeLiteralsAvailable reports whether this build can parse code files.
func CodeLiteralsAvailable() bool {
	return newLiteralScanner() != nil
}
