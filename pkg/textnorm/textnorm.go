package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Key devuelve la clave de búsqueda de un texto: minúsculas, sin acentos y con espacios colapsados.
// "  Depilación  Láser " -> "depilacion laser".
func Key(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.Join(strings.Fields(strings.ToLower(out)), " ")
}

// Contains indica si key(haystack) contiene key(needle).
func Contains(haystack, needle string) bool {
	return strings.Contains(Key(haystack), Key(needle))
}
