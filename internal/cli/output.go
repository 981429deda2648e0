package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	json "github.com/goccy/go-json"

	"github.com/hupe1980/neighborhood"
	"github.com/hupe1980/neighborhood/corpus"
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Bold(true)
	rankStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Bold(true)
	idStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	scoreStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	borderStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	successMark = lipgloss.NewStyle().Foreground(lipgloss.Color("82")).Render("✓")
	skipMark    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Render("–")
)

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func renderNeighbors(w io.Writer, id string, hits []neighborhood.Neighbor) {
	if len(hits) == 0 {
		fmt.Fprintf(w, "  %s no neighbors for %s\n", dimStyle.Render("●"), idStyle.Render(strconv.Quote(id)))
		return
	}

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(borderStyle).
		Headers("#", "ID", "SCORE").
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle.Padding(0, 1)
			case col == 0:
				return rankStyle.Padding(0, 1)
			case col == 1:
				return idStyle.Padding(0, 1)
			default:
				return scoreStyle.Padding(0, 1)
			}
		})
	for i, h := range hits {
		t.Row(strconv.Itoa(i+1), h.ID, strconv.FormatFloat(float64(h.Score), 'g', 6, 32))
	}

	fmt.Fprintf(w, "%s %s\n", headerStyle.Render("Neighbors of"), idStyle.Render(strconv.Quote(id)))
	fmt.Fprintln(w, t.Render())
}

func renderMeta(w io.Writer, title string, m corpus.Meta) {
	rows := [][2]string{
		{"corpus id", m.CorpusID},
		{"format", strconv.Itoa(m.Format)},
		{"rows", strconv.Itoa(m.Rows)},
		{"dim", strconv.Itoa(m.Dim)},
		{"norms", strconv.FormatBool(m.HasNorm)},
		{"compression", m.Compression.String()},
		{"block size", strconv.Itoa(m.BlockSize)},
		{"id bytes", strconv.FormatInt(m.IDBytes, 10)},
		{"created", m.CreatedAt.Format("2006-01-02 15:04:05 MST")},
		{"updated", m.UpdatedAt.Format("2006-01-02 15:04:05 MST")},
	}

	fmt.Fprintln(w, headerStyle.Render(title))
	for _, r := range rows {
		fmt.Fprintf(w, "  %s  %s\n", keyStyle.Render(fmt.Sprintf("%-12s", r[0]+":")), r[1])
	}
}
