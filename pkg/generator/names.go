package generator

import (
	"go/token"
	"strings"
	"unicode"
)

var initialisms = map[string]bool{
	"api": true, "http": true, "id": true, "ip": true, "json": true,
	"sku": true, "uri": true, "url": true, "uuid": true,
}

// words splits s on anything that is not a letter or digit and on
// lower-to-upper case changes.
func words(s string) []string {
	var (
		out []string
		cur []rune
	)
	flush := func() {
		if len(cur) > 0 {
			out = append(out, string(cur))
			cur = cur[:0]
		}
	}
	var prev rune
	for _, r := range s {
		switch {
		case !unicode.IsLetter(r) && !unicode.IsDigit(r):
			flush()
		case unicode.IsUpper(r) && (unicode.IsLower(prev) || unicode.IsDigit(prev)):
			flush()
			cur = append(cur, r)
		default:
			cur = append(cur, r)
		}
		prev = r
	}
	flush()
	return out
}

func title(w string) string {
	if initialisms[strings.ToLower(w)] {
		return strings.ToUpper(w)
	}
	r := []rune(w)
	r[0] = unicode.ToUpper(r[0])
	return string(r)
}

// exported returns the exported Go identifier for name.
func exported(name string) string {
	var b strings.Builder
	for _, w := range words(name) {
		b.WriteString(title(w))
	}
	id := b.String()
	if id == "" {
		return "X"
	}
	if unicode.IsDigit([]rune(id)[0]) {
		return "X" + id
	}
	return id
}

// local returns an unexported identifier for name that is safe to use as a
// parameter.
func local(name string) string {
	ws := words(name)
	if len(ws) == 0 {
		return "arg"
	}
	var b strings.Builder
	b.WriteString(strings.ToLower(ws[0]))
	for _, w := range ws[1:] {
		b.WriteString(title(w))
	}
	id := b.String()
	if unicode.IsDigit([]rune(id)[0]) {
		id = "arg" + id
	}
	if token.IsKeyword(id) || id == "opts" {
		id += "Arg"
	}
	return id
}
