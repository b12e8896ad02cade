package printer

import (
	"fmt"
	"io"

	"github.com/mozilla-ai/mcpconnect/internal/cmd/output"
	"github.com/mozilla-ai/mcpconnect/internal/domain"
)

var _ output.Printer[ToolsListResult] = (*ToolsListPrinter)(nil)

// ToolsListResult represents the tools a server reported on its info endpoint.
type ToolsListResult struct {
	Server string     `json:"server" yaml:"server"`
	Tools  []ToolView `json:"tools"  yaml:"tools"`
	Count  int        `json:"count"  yaml:"count"`
}

// ToolView is the CLI view of a single tool.
type ToolView struct {
	Name        string `json:"name"                  yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
}

// NewToolsListResult builds the tools view from parsed server info.
func NewToolsListResult(info domain.ServerInfo) ToolsListResult {
	tools := make([]ToolView, 0, len(info.Tools))
	for _, t := range info.Tools {
		tools = append(tools, ToolView{Name: t.Name, Description: t.Description})
	}
	return ToolsListResult{
		Server: info.Name,
		Tools:  tools,
		Count:  len(tools),
	}
}

type ToolsListPrinter struct {
	headerFunc output.WriteFunc[ToolsListResult]
	footerFunc output.WriteFunc[ToolsListResult]
}

func (p *ToolsListPrinter) Header(w io.Writer, count int) {
	if p.headerFunc != nil {
		p.headerFunc(w, count)
	}
}

func (p *ToolsListPrinter) SetHeader(fn output.WriteFunc[ToolsListResult]) {
	p.headerFunc = fn
}

func (p *ToolsListPrinter) Item(w io.Writer, result ToolsListResult) error {
	_, _ = fmt.Fprintf(w, "Tools for '%s' (%d total):\n", result.Server, result.Count)

	if len(result.Tools) == 0 {
		_, _ = fmt.Fprintln(w, "  (No tools reported)")
		return nil
	}

	// Tools are printed in the order the server reported them.
	for _, tool := range result.Tools {
		if tool.Description == "" {
			_, _ = fmt.Fprintf(w, "  %s\n", tool.Name)
			continue
		}
		_, _ = fmt.Fprintf(w, "  %s - %s\n", tool.Name, tool.Description)
	}

	return nil
}

func (p *ToolsListPrinter) Footer(w io.Writer, count int) {
	if p.footerFunc != nil {
		p.footerFunc(w, count)
	}
}

func (p *ToolsListPrinter) SetFooter(fn output.WriteFunc[ToolsListResult]) {
	p.footerFunc = fn
}
