package stubgen

// Policy is the naming convention table the generator infers annotations
// from. Lookups are exact and case-sensitive; a missing name is not an error.
type Policy struct {
	Names           map[string]string
	IgnoreNames     map[string]bool
	IgnoreFilenames map[string]bool
}

// Lookup returns the fully qualified type mapped to name. Empty mappings are
// reported as absent.
func (p Policy) Lookup(name string) (string, bool) {
	fq := p.Names[name]
	return fq, fq != ""
}

func (p Policy) IgnoresName(name string) bool {
	return p.IgnoreNames[name]
}

// IgnoresFile reports whether a file with the given base name is skipped.
func (p Policy) IgnoresFile(filename string) bool {
	return p.IgnoreFilenames[filename]
}
