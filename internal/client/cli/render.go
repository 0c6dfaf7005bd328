package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	mutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	pendingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	cardStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("238")).Padding(0, 1)
)

const timeLayout = "2006-01-02 15:04"

// renderTask draws one task card. pending is an unsaved description, if any.
func renderTask(t *models.Task, pending *string) string {
	lines := []string{
		titleStyle.Render(t.Title) + "  " + mutedStyle.Render(t.ID),
	}
	if t.Description != "" {
		lines = append(lines, t.Description)
	}
	if pending != nil {
		lines = append(lines, pendingStyle.Render("unsaved: "+*pending))
	}
	if t.ImageURL != nil && *t.ImageURL != "" {
		lines = append(lines, mutedStyle.Render("image: "+*t.ImageURL))
	}
	if !t.CreatedAt.IsZero() {
		lines = append(lines, mutedStyle.Render(t.CreatedAt.In(time.Local).Format(timeLayout)))
	}
	return cardStyle.Render(strings.Join(lines, "\n"))
}

// renderTasks writes list in the given order. pending maps task id to an
// unsaved description.
func renderTasks(w io.Writer, list []*models.Task, pending func(id string) (string, bool)) {
	if len(list) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No tasks yet. Use 'add' to create one."))
		return
	}
	for _, t := range list {
		var p *string
		if text, ok := pending(t.ID); ok {
			p = &text
		}
		fmt.Fprintln(w, renderTask(t, p))
	}
}
