// Package markup turns the lightweight emphasis markers the model likes to
// emit into plain display text.
package markup

import "strings"

// Flatten runs both passes in order. The double-marker pass must come first,
// otherwise "**" would be consumed as two single markers.
func Flatten(s string) string {
	return SingleToSpace(DoubleToNewline(s))
}

// DoubleToNewline replaces every "**" with a newline.
func DoubleToNewline(s string) string {
	return strings.Join(strings.Split(s, "**"), "\n")
}

// SingleToSpace replaces every remaining "*" with a single space.
func SingleToSpace(s string) string {
	return strings.Join(strings.Split(s, "*"), " ")
}
