package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/skarven/flowsheet/pkg/model"
	"github.com/skarven/flowsheet/pkg/pipeline"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// inspectCommand creates the inspect command for browsing the steps of an
// interchange document interactively.
func (c *CLI) inspectCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "inspect <document.xml>",
		Short: "Browse the steps of an interchange document interactively",
		Long: `Browse the process steps of an interchange document in an interactive table.

Both schema dialects are accepted. Select a step to see its ports and
parameters.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(args[0])
		},
	}

	return cmd
}

// runInspect parses the document and starts the interactive step browser.
func (c *CLI) runInspect(path string) error {
	data, err := readInput(path)
	if err != nil {
		return err
	}

	doc, warnings, err := pipeline.ParseDocument(data)
	if err != nil {
		return err
	}
	printWarnings(warnings)
	if len(doc.Model.Steps) == 0 {
		printInfo("Document %q has no process steps", doc.Model.Name)
		return nil
	}

	m := newStepListModel(&doc.Model)
	_, err = tea.NewProgram(m).Run()
	return err
}

// =============================================================================
// StepListModel - Interactive step browsing
// =============================================================================

// StepListModel is the bubbletea model for browsing process steps.
type StepListModel struct {
	Model    *model.ProcessModel
	Cursor   int
	Expanded bool
	Height   int
	Offset   int
}

// newStepListModel creates a new step list model.
func newStepListModel(m *model.ProcessModel) StepListModel {
	return StepListModel{Model: m, Height: 15}
}

func (m StepListModel) Init() tea.Cmd {
	return nil
}

func (m StepListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.Expanded = false
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Model.Steps)-1 {
				m.Cursor++
				m.Expanded = false
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Expanded = !m.Expanded
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m StepListModel) View() string {
	var b strings.Builder

	title := m.Model.Name
	if title == "" {
		title = m.Model.ID
	}
	b.WriteString(StyleTitle.Render(fmt.Sprintf("%s (%s)", title, m.Model.DiagramType)))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ details  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Model.Steps) {
		end = len(m.Model.Steps)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		s := &m.Model.Steps[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		rows = append(rows, []string{
			cursor, s.ID, s.Type, s.Name,
			fmt.Sprintf("%d", len(s.Ports)),
			fmt.Sprintf("%d", len(s.Parameters)),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "Id", "Class", "Name", "Ports", "Params").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n")

	if m.Expanded {
		b.WriteString(m.detailView(&m.Model.Steps[m.Cursor]))
	}

	b.WriteString("\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Model.Steps))))

	return b.String()
}

// detailView renders the ports and parameters of the selected step.
func (m StepListModel) detailView(s *model.ProcessStep) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString(StyleValue.Render("  " + s.Name))
	if s.Description != "" {
		b.WriteString(listDimStyle.Render("  " + s.Description))
	}
	b.WriteString("\n")

	for i := range s.Ports {
		p := &s.Ports[i]
		arrow := iconArrow
		if p.Direction == model.DirectionInlet {
			arrow = "←"
		}
		b.WriteString(fmt.Sprintf("    %s %s %s\n",
			listDimStyle.Render(arrow), p.Name, listDimStyle.Render(string(p.FlowType))))
	}
	for i := range s.Parameters {
		p := &s.Parameters[i]
		value := p.Value
		if p.Unit != "" {
			value += " " + p.Unit
		}
		b.WriteString(fmt.Sprintf("    %s %s\n",
			listDimStyle.Render(p.Name+":"), StyleValue.Render(value)))
	}

	return b.String()
}
