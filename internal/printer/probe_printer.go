package printer

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/mozilla-ai/mcpconnect/internal/cmd/output"
	"github.com/mozilla-ai/mcpconnect/internal/upstream"
)

var _ output.Printer[ProbeResult] = (*ProbeResultPrinter)(nil)

// ProbeResult is the CLI view of a single probe of a tool server endpoint.
type ProbeResult struct {
	Endpoint   string `json:"endpoint"             yaml:"endpoint"`
	OK         bool   `json:"ok"                   yaml:"ok"`
	StatusCode int    `json:"statusCode,omitempty" yaml:"statusCode,omitempty"`
	LatencyMS  int64  `json:"latencyMs"            yaml:"latencyMs"`
	Kind       string `json:"kind,omitempty"       yaml:"kind,omitempty"`
	Error      string `json:"error,omitempty"      yaml:"error,omitempty"`
	Payload    any    `json:"payload,omitempty"    yaml:"payload,omitempty"`

	// Tools is only used for text output of info probes.
	Tools *ToolsListResult `json:"-" yaml:"-"`
}

// NewProbeResult builds the CLI view of a probe outcome against endpoint.
func NewProbeResult(endpoint string, outcome upstream.Outcome) ProbeResult {
	res := ProbeResult{
		Endpoint:   endpoint,
		OK:         outcome.OK(),
		StatusCode: outcome.StatusCode,
		LatencyMS:  outcome.Latency.Milliseconds(),
	}

	if outcome.Failure != nil {
		res.Kind = string(outcome.Failure.Kind)
		res.Error = outcome.Failure.Message
		return res
	}

	var payload any
	if err := json.Unmarshal(outcome.Payload, &payload); err == nil {
		res.Payload = payload
	}

	return res
}

type ProbeResultPrinter struct {
	headerFunc   output.WriteFunc[ProbeResult]
	footerFunc   output.WriteFunc[ProbeResult]
	toolsPrinter ToolsListPrinter
}

func (p *ProbeResultPrinter) Header(w io.Writer, count int) {
	if p.headerFunc != nil {
		p.headerFunc(w, count)
	}
}

func (p *ProbeResultPrinter) SetHeader(fn output.WriteFunc[ProbeResult]) {
	p.headerFunc = fn
}

func (p *ProbeResultPrinter) Item(w io.Writer, res ProbeResult) error {
	if !res.OK {
		_, _ = fmt.Fprintf(w, "✗ %s (%s)\n  %s\n", res.Endpoint, res.Kind, res.Error)
		return nil
	}

	_, _ = fmt.Fprintf(w, "✓ %s (HTTP %d, %dms)\n", res.Endpoint, res.StatusCode, res.LatencyMS)

	if res.Tools != nil {
		return p.toolsPrinter.Item(w, *res.Tools)
	}

	return writeIndentedJSON(w, res.Payload)
}

func (p *ProbeResultPrinter) Footer(w io.Writer, count int) {
	if p.footerFunc != nil {
		p.footerFunc(w, count)
	}
}

func (p *ProbeResultPrinter) SetFooter(fn output.WriteFunc[ProbeResult]) {
	p.footerFunc = fn
}

func writeIndentedJSON(w io.Writer, v any) error {
	if v == nil {
		return nil
	}

	b, err := json.MarshalIndent(v, "  ", "  ")
	if err != nil {
		return err
	}
	_, _ = fmt.Fprintf(w, "  %s\n", b)

	return nil
}
