// Package templates renders the outbound markup messages. Each template is
// one outbound message shape; all value preparation happens in the caller,
// the templates only substitute.
package templates

import (
	"embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/Cleo-Systems/elevate-scr/internal/service/scr/exceptions"
)

// Logical template names.
const (
	UploadSummary          = "upload_summary.xml"
	SetResourcePermissions = "set_resource_permissions.xml"
	GetResourcePermissions = "get_resource_permissions.xml"
	EventListQuery         = "event_list_query.xml"
)

//go:embed *.xml
var files embed.FS

// The set is parsed once at startup and read-only thereafter. A missing
// substitution key fails the render instead of emitting an empty value.
var set = template.Must(
	template.New("scr").Option("missingkey=error").ParseFS(files, "*.xml"),
)

// Render substitutes ctx into the named template.
func Render(name string, ctx map[string]any) (string, error) {
	tmpl := set.Lookup(name)
	if tmpl == nil {
		return "", exceptions.TemplateRenderError{Template: name, Err: fmt.Errorf("unknown template")}
	}
	var sb strings.Builder
	if err := tmpl.Execute(&sb, ctx); err != nil {
		return "", exceptions.TemplateRenderError{Template: name, Err: err}
	}
	return sb.String(), nil
}
