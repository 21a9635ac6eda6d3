// Package assemble concatenates module contents into the final artifact.
package assemble

import "strings"

// DefaultSeparator joins module contributions unless the caller overrides it.
const DefaultSeparator = "\n\n"

// Assemble builds the artifact by concatenating each module's content in
// the given schedule order, skipping empty contributions, with a fixed
// separator. The result is a pure function of (contents, order, sep):
// identical inputs always produce byte-identical artifacts, regardless of
// the completion order the contents were produced in.
func Assemble(contents map[string]string, order []string, sep string) string {
	var b strings.Builder
	first := true
	for _, id := range order {
		content := contents[id]
		if content == "" {
			continue
		}
		if !first {
			b.WriteString(sep)
		}
		b.WriteString(content)
		first = false
	}
	return b.String()
}
