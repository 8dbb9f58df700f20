package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/schemadraw/schemadraw/pkg/diagram"
)

var (
	styleTitle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("36"))
	styleNumber = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	styleDim    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

// printSummary prints a short styled overview of a diagram after a command
// completes.
func printSummary(d diagram.Diagram) {
	title := d.Metadata.Title
	if title == "" {
		title = "Untitled Diagram"
	}
	fmt.Println(styleTitle.Render(title))
	fmt.Printf("  %s entities, %s relationships\n",
		styleNumber.Render(fmt.Sprintf("%d", len(d.Entities))),
		styleNumber.Render(fmt.Sprintf("%d", len(d.Relationships))),
	)
	for _, e := range d.Entities {
		fmt.Printf("  %s %s\n",
			styleDim.Render("-"),
			fmt.Sprintf("%s (%d properties)", e.Name, e.Properties.Len()),
		)
	}
}
