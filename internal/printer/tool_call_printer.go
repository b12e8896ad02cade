package printer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mozilla-ai/mcpconnect/internal/cmd/output"
	"github.com/mozilla-ai/mcpconnect/internal/domain"
)

var _ output.Printer[ToolCallView] = (*ToolCallPrinter)(nil)

// ToolCallView is the CLI view of a tool invocation result.
type ToolCallView struct {
	Success   bool   `json:"success"             yaml:"success"`
	Data      any    `json:"data,omitempty"      yaml:"data,omitempty"`
	Error     string `json:"error,omitempty"     yaml:"error,omitempty"`
	RawOutput string `json:"rawOutput,omitempty" yaml:"rawOutput,omitempty"`
}

// NewToolCallView builds the CLI view of a tool call result.
func NewToolCallView(res domain.ToolCallResult) ToolCallView {
	view := ToolCallView{
		Success:   res.Success,
		Error:     res.Error,
		RawOutput: res.RawOutput,
	}

	if len(res.Data) > 0 {
		var data any
		if err := json.Unmarshal(res.Data, &data); err == nil {
			view.Data = data
		}
	}

	return view
}

type ToolCallPrinter struct {
	headerFunc output.WriteFunc[ToolCallView]
	footerFunc output.WriteFunc[ToolCallView]
}

func (p *ToolCallPrinter) Header(w io.Writer, count int) {
	if p.headerFunc != nil {
		p.headerFunc(w, count)
	}
}

func (p *ToolCallPrinter) SetHeader(fn output.WriteFunc[ToolCallView]) {
	p.headerFunc = fn
}

func (p *ToolCallPrinter) Item(w io.Writer, res ToolCallView) error {
	if !res.Success {
		_, _ = fmt.Fprintf(w, "✗ Tool call failed: %s\n", res.Error)
		if res.RawOutput != "" {
			_, _ = fmt.Fprintf(w, "  Output: %s\n", res.RawOutput)
		}
		return nil
	}

	_, _ = fmt.Fprintln(w, "✓ Tool call succeeded")

	return writeIndentedJSON(w, res.Data)
}

func (p *ToolCallPrinter) Footer(w io.Writer, count int) {
	if p.footerFunc != nil {
		p.footerFunc(w, count)
	}
}

func (p *ToolCallPrinter) SetFooter(fn output.WriteFunc[ToolCallView]) {
	p.footerFunc = fn
}
