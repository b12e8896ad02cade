package printer

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/mozilla-ai/mcpconnect/internal/cmd/output"
	"github.com/mozilla-ai/mcpconnect/internal/domain"
)

var _ output.Printer[ServerListItem] = (*ServerPrinter)(nil)

// ServerListItem is the CLI view of a registered tool server.
type ServerListItem struct {
	ID          string     `json:"id"                    yaml:"id"`
	Name        string     `json:"name"                  yaml:"name"`
	BaseURL     string     `json:"baseUrl"               yaml:"baseUrl"`
	Enabled     bool       `json:"isEnabled"             yaml:"isEnabled"`
	Status      string     `json:"status"                yaml:"status"`
	LastChecked *time.Time `json:"lastChecked,omitempty" yaml:"lastChecked,omitempty"`
	ErrorDetail string     `json:"errorDetail,omitempty" yaml:"errorDetail,omitempty"`
	Version     string     `json:"version,omitempty"     yaml:"version,omitempty"`
	Tools       []string   `json:"tools"                 yaml:"tools"`
}

// NewServerListItem builds the CLI view of a registry record.
func NewServerListItem(r domain.ServerRecord) ServerListItem {
	item := ServerListItem{
		ID:          r.ID,
		Name:        r.Name,
		BaseURL:     r.BaseURL,
		Enabled:     r.Enabled,
		Status:      string(r.Status),
		LastChecked: r.LastChecked,
		ErrorDetail: r.ErrorDetail,
		Tools:       make([]string, 0, len(r.Tools)),
	}
	if r.Info != nil {
		item.Version = r.Info.Version
	}
	for _, t := range r.Tools {
		item.Tools = append(item.Tools, t.Name)
	}
	return item
}

type ServerPrinter struct {
	headerFunc output.WriteFunc[ServerListItem]
	footerFunc output.WriteFunc[ServerListItem]
}

func NewServerPrinter() *ServerPrinter {
	return &ServerPrinter{
		headerFunc: DefaultServerHeader(),
		footerFunc: DefaultServerFooter(),
	}
}

func DefaultServerHeader() output.WriteFunc[ServerListItem] {
	return func(w io.Writer, count int) {
		_, _ = fmt.Fprintf(w, "Registered tool servers (%d total):\n\n", count)
	}
}

func DefaultServerFooter() output.WriteFunc[ServerListItem] {
	return nil
}

func (p *ServerPrinter) Header(w io.Writer, count int) {
	if p.headerFunc != nil {
		p.headerFunc(w, count)
	}
}

func (p *ServerPrinter) SetHeader(fn output.WriteFunc[ServerListItem]) {
	p.headerFunc = fn
}

// Item outputs a single server entry.
func (p *ServerPrinter) Item(w io.Writer, s ServerListItem) error {
	_, _ = fmt.Fprintf(w, "%s %s (%s)\n", statusIcon(s), s.Name, s.Status)
	_, _ = fmt.Fprintf(w, "  🆔 %s\n", s.ID)
	_, _ = fmt.Fprintf(w, "  URL: %s\n", s.BaseURL)

	if !s.Enabled {
		_, _ = fmt.Fprintln(w, "  Disabled")
	}
	if s.Version != "" {
		_, _ = fmt.Fprintf(w, "  Version: %s\n", s.Version)
	}
	if s.LastChecked != nil {
		_, _ = fmt.Fprintf(w, "  Last checked: %s\n", s.LastChecked.Format(time.RFC3339))
	}
	if s.ErrorDetail != "" {
		_, _ = fmt.Fprintf(w, "  Error: %s\n", s.ErrorDetail)
	}
	if len(s.Tools) > 0 {
		_, _ = fmt.Fprintf(w, "  Tools: %s\n", strings.Join(s.Tools, ", "))
	}
	_, _ = fmt.Fprintln(w, "")

	return nil
}

func (p *ServerPrinter) Footer(w io.Writer, count int) {
	if p.footerFunc != nil {
		p.footerFunc(w, count)
	}
}

func (p *ServerPrinter) SetFooter(fn output.WriteFunc[ServerListItem]) {
	p.footerFunc = fn
}

func statusIcon(s ServerListItem) string {
	if !s.Enabled {
		return "⏸"
	}
	switch domain.Status(s.Status) {
	case domain.StatusConnected:
		return "🟢"
	case domain.StatusConnecting:
		return "🟡"
	case domain.StatusError:
		return "🔴"
	default:
		return "⚪"
	}
}
