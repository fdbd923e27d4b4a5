package model

import "strings"

// Codelists maps a codelist name to its raw value to code table.
type Codelists map[string]map[string]string

// Add registers raw as a source value of code in codelist name.
func (c Codelists) Add(name, raw, code string) {
	name = codelistName(name)

	table, ok := c[name]
	if !ok {
		table = make(map[string]string)
		c[name] = table
	}

	table[strings.TrimSpace(raw)] = code
}

// Lookup substitutes raw through codelist name. known is false when the codelist
// itself is not loaded; found is false when the codelist has no entry for raw.
func (c Codelists) Lookup(name, raw string) (code string, known bool, found bool) {
	table, ok := c[codelistName(name)]
	if !ok {
		return "", false, false
	}

	code, found = table[strings.TrimSpace(raw)]

	return code, true, found
}

// Merge adds every entry of other, overriding duplicates.
func (c Codelists) Merge(other Codelists) {
	for name, table := range other {
		for raw, code := range table {
			c.Add(name, raw, code)
		}
	}
}

// codelistName drops a trailing ".csv" so that schema references and loaded
// tables share one name.
func codelistName(name string) string {
	return strings.TrimSuffix(strings.TrimSpace(name), ".csv")
}
