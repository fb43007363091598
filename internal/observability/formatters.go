// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/cv-builder/internal/cv"
	"github.com/jonathan/cv-builder/internal/translation"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintCV outputs a human-readable summary of a CV document.
func (p *Printer) PrintCV(doc cv.CVData) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Name:     %s\n", doc.Name))
	sb.WriteString(fmt.Sprintf("Title:    %s\n", doc.Title))
	sb.WriteString(fmt.Sprintf("Email:    %s\n", doc.Contact.Email))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("Skills:          %d\n", len(doc.Skills)))
	sb.WriteString(fmt.Sprintf("Work entries:    %d\n", len(doc.WorkExperience)))
	sb.WriteString(fmt.Sprintf("Education:       %d\n", len(doc.Education)))
	sb.WriteString(fmt.Sprintf("Projects:        %d\n", len(doc.Projects)))
	sb.WriteString(fmt.Sprintf("Languages:       %d\n", len(doc.Languages)))
	sb.WriteString(fmt.Sprintf("Interests:       %d", len(doc.Interests)))

	p.printBox("CV Document", sb.String())
}

// PrintProgress outputs one translation progress event as a single line.
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) PrintProgress(event translation.ProgressEvent) {
	if event.Section != "" && event.Total > 0 {
		fmt.Fprintf(p.out, "[%d/%d] %s\n", event.Index, event.Total, event.Message)
		return
	}
	fmt.Fprintf(p.out, "%s\n", event.Message)
}
