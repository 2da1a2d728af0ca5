package components

import (
	"fmt"
	"strconv"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
)

// PageInput reads a 1-based page number. Keys other than digits are
// ignored.
type PageInput struct {
	input textinput.Model
	max   int
}

func NewPageInput() PageInput {
	ti := textinput.New()
	ti.CharLimit = 4
	ti.Placeholder = "page"
	return PageInput{input: ti}
}

// Open clears the input and focuses it for a document of pages pages.
func (p *PageInput) Open(pages int) tea.Cmd {
	p.max = pages
	p.input.Reset()
	p.input.Placeholder = fmt.Sprintf("1-%d", pages)
	return p.input.Focus()
}

func (p *PageInput) Close() {
	p.input.Blur()
}

func (p PageInput) Update(msg tea.Msg) (PageInput, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		k := key.String()
		if len(k) == 1 && (k[0] < '0' || k[0] > '9') {
			return p, nil
		}
	}
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	return p, cmd
}

func (p PageInput) View() string { return p.input.View() }

func (p PageInput) Value() string { return p.input.Value() }

// Page returns the entered page, or an error when it is empty or outside
// 1..pages.
func (p PageInput) Page() (int, error) {
	n, err := strconv.Atoi(p.input.Value())
	if err != nil || n < 1 || n > p.max {
		return 0, fmt.Errorf("no page %q (1-%d)", p.input.Value(), p.max)
	}
	return n, nil
}
