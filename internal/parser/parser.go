package parser

import (
	"context"
	"fmt"
	"go/ast"
	"strings"

	"github.com/cmmoran/bindgen/internal/model"
)

// Introspector discovers the raw classes of one API description.
type Introspector interface {
	Introspect(ctx context.Context) (*Result, error)
}

// Result is what an Introspector found.
type Result struct {
	Origin   string // module path, API title or proto package
	Classes  []*model.RawClass
	Warnings []model.Warning
}

// Warning codes.
const (
	WarnUnsupportedType = "unsupported_type"
	WarnEmbedded        = "embedded_field"
	WarnGeneric         = "generic_type"
	WarnMultipleResults = "multiple_results"
	WarnStreaming       = "streaming_rpc"
	WarnDroppedDefault  = "dropped_default"
	WarnExcluded        = "excluded"
	WarnPruned          = "pruned_reference"
	WarnRenamed         = "renamed_argument"
	WarnDuplicateName   = "duplicate_name"
)

func (r *Result) warn(code, subject, format string, args ...any) {
	r.Warnings = append(r.Warnings, model.Warning{
		Code:    code,
		Subject: subject,
		Message: fmt.Sprintf(format, args...),
	})
}

// Find returns the class called name.
func (r *Result) Find(name string) *model.RawClass {
	for _, c := range r.Classes {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func commentText(cg *ast.CommentGroup) string {
	if cg == nil {
		return ""
	}
	var b strings.Builder
	for _, c := range cg.List {
		txt := strings.TrimSpace(strings.Trim(strings.TrimPrefix(strings.TrimPrefix(c.Text, "//"), "/*"), "*/"))
		b.WriteString(txt)
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

// isDeprecated follows the Go convention of a paragraph starting with
// "Deprecated:".
func isDeprecated(doc string) bool {
	for _, line := range strings.Split(doc, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "Deprecated:") {
			return true
		}
	}
	return false
}

// exportName turns an arbitrary identifier into an exported Go-style name.
func exportName(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			if upper && r >= 'a' && r <= 'z' {
				r -= 'a' - 'A'
			}
			b.WriteRune(r)
			upper = false
		default:
			upper = true
		}
	}
	return b.String()
}
