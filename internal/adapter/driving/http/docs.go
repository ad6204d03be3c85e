package httphandler

import (
	"bytes"
	"fmt"
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/ericfisherdev/soapmock/internal/soap"
)

var (
	mdRenderer    = goldmark.New(goldmark.WithExtensions(extension.GFM))
	htmlSanitizer = bluemonday.UGCPolicy()
)

// RenderMarkdown converts a markdown string to sanitized HTML.
// Returns empty string for empty input.
func RenderMarkdown(src string) string {
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(src), &buf); err != nil {
		return htmlSanitizer.Sanitize(src)
	}

	return htmlSanitizer.Sanitize(buf.String())
}

// serviceMarkdown describes svc and its operations as a markdown document.
func serviceMarkdown(svc soap.Service) string {
	var b strings.Builder

	fmt.Fprintf(&b, "# %s\n\n", svc.Name)
	fmt.Fprintf(&b, "- Endpoint: `%s`\n", svc.Location)
	fmt.Fprintf(&b, "- Namespace: `%s`\n", svc.Namespace)
	fmt.Fprintf(&b, "- WSDL: [%s?wsdl](%s?wsdl)\n", svc.Location, svc.Location)
	b.WriteString("- Authentication: HTTP Basic\n")

	for _, op := range svc.Operations {
		fmt.Fprintf(&b, "\n## %s\n\n", op.Name)
		if op.Doc != "" {
			fmt.Fprintf(&b, "%s\n\n", op.Doc)
		}
		fmt.Fprintf(&b, "SOAPAction: `%s`\n\n", svc.SOAPAction(op.Name))
		b.WriteString("| Direction | Element | Type |\n|---|---|---|\n")
		for _, f := range op.Args {
			fmt.Fprintf(&b, "| in | `%s` | `%s` |\n", f.Name, f.Type)
		}
		for _, f := range op.Returns {
			fmt.Fprintf(&b, "| out | `%s` | `%s` |\n", f.Name, f.Type)
		}
	}

	return b.String()
}

// renderDocPage wraps the rendered service description in a standalone HTML page.
func renderDocPage(svc soap.Service) []byte {
	var b bytes.Buffer
	b.WriteString("<!DOCTYPE html>\n<html lang=\"en\">\n<head>\n<meta charset=\"utf-8\">\n")
	fmt.Fprintf(&b, "<title>%s</title>\n", html.EscapeString(svc.Name))
	b.WriteString("</head>\n<body>\n")
	b.WriteString(RenderMarkdown(serviceMarkdown(svc)))
	b.WriteString("</body>\n</html>\n")
	return b.Bytes()
}
