package report

import (
	"fmt"
	"io"

	pt "github.com/jedib0t/go-pretty/v6/table"
)

const NotAvailable = "not available"

const (
	FormatText  = "text"
	FormatTable = "table"
)

type Printer interface {
	Print(e Entry) error
	Flush() error
}

func NewPrinter(format string, w io.Writer) (Printer, error) {
	switch format {
	case FormatText, "":
		return NewTextPrinter(w), nil
	case FormatTable:
		return NewTablePrinter(w), nil
	default:
		return nil, fmt.Errorf("unsupported output format %q (want %s or %s)", format, FormatText, FormatTable)
	}
}

// TextPrinter writes "label: value" lines as each entry arrives.
type TextPrinter struct {
	w io.Writer
}

func NewTextPrinter(w io.Writer) *TextPrinter { return &TextPrinter{w: w} }

func (p *TextPrinter) Print(e Entry) error {
	if len(e.Disks) > 0 {
		return p.printDisks(e)
	}

	_, err := fmt.Fprintf(p.w, "%s: %s\n", e.Label, valueOf(e))
	return err
}

func (p *TextPrinter) printDisks(e Entry) error {
	if _, err := fmt.Fprintf(p.w, "%s:\n", e.Label); err != nil {
		return err
	}

	for _, d := range e.Disks {
		_, err := fmt.Fprintf(p.w, "  index: %s\n    device-name: %s\n    device-type: %s\n",
			orNotAvailable(d.Index), orNotAvailable(d.DeviceName), orNotAvailable(d.Type))
		if err != nil {
			return err
		}
	}

	return nil
}

func (p *TextPrinter) Flush() error { return nil }

// TablePrinter collects entries and renders them as one table on Flush.
type TablePrinter struct {
	t pt.Writer
}

func NewTablePrinter(w io.Writer) *TablePrinter {
	t := pt.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(pt.StyleLight)
	t.AppendHeader(pt.Row{"Attribute", "Value"})
	return &TablePrinter{t: t}
}

func (p *TablePrinter) Print(e Entry) error {
	if len(e.Disks) == 0 {
		p.t.AppendRow(pt.Row{e.Label, valueOf(e)})
		return nil
	}

	for ix, d := range e.Disks {
		key := fmt.Sprintf("%s[%d]", e.Label, ix)
		p.t.AppendRow(pt.Row{key + ".index", orNotAvailable(d.Index)})
		p.t.AppendRow(pt.Row{key + ".device-name", orNotAvailable(d.DeviceName)})
		p.t.AppendRow(pt.Row{key + ".device-type", orNotAvailable(d.Type)})
	}
	return nil
}

func (p *TablePrinter) Flush() error {
	p.t.Render()
	return nil
}

func valueOf(e Entry) string {
	if !e.Available() {
		return NotAvailable
	}
	return orNotAvailable(e.Value)
}

func orNotAvailable(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}
