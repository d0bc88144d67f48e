// griddemo: a virtualized datagrid over a few thousand generated rows,
// grouped by region with collapsible headers.
package main

import (
	"fmt"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"datagrid"
)

type Server struct {
	Region string
	Name   string
	Status string
	CPU    float64
	Memory float64
	Uptime string
}

var regions = []string{"us-east-1", "us-west-2", "eu-west-1", "ap-southeast-1"}
var statuses = []string{"running", "running", "running", "degraded", "stopped"}

func generate(n int) []Server {
	servers := make([]Server, n)
	for i := range servers {
		servers[i] = Server{
			Region: regions[i*len(regions)/n],
			Name:   fmt.Sprintf("srv-%04d", i),
			Status: statuses[i%len(statuses)],
			CPU:    float64((i*37)%100) + 0.5,
			Memory: float64((i*53)%100) + 0.25,
			Uptime: fmt.Sprintf("%dd%dh", (i*7)%90, i%24),
		}
	}
	return servers
}

type model struct {
	grid *datagrid.Grid
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok {
		switch key.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		}
	}
	var cmd tea.Cmd
	m.grid, cmd = m.grid.Update(msg)
	return m, cmd
}

func (m model) View() string {
	return m.grid.View()
}

func main() {
	source := datagrid.NewSliceSource(generate(5000)...)

	columns := datagrid.NewColumnSet(
		datagrid.NewColumn("Name").Fixed(10),
		datagrid.NewColumn("Status").MinWidth(8),
		datagrid.NewColumn("CPU %").Fixed(7),
		datagrid.NewColumn("Mem %").Fixed(7),
		datagrid.NewColumn("Uptime").Proportional(1).MinWidth(8),
	).Frozen(1)

	grid := datagrid.NewGrid(source, columns, func(item any, col int) string {
		s := item.(Server)
		switch col {
		case 0:
			return s.Name
		case 1:
			return s.Status
		case 2:
			return fmt.Sprintf("%5.1f", s.CPU)
		case 3:
			return fmt.Sprintf("%5.1f", s.Memory)
		case 4:
			return s.Uptime
		}
		return ""
	}).GroupBy(datagrid.GroupDescriptor{
		Name: "Region",
		Key:  func(item any) string { return item.(Server).Region },
	})

	if err := grid.Attach(); err != nil {
		log.Fatal(err)
	}

	// Seed a size for non-TTY output so the grid renders something even
	// when piped.
	w, h, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		w, h = 80, 24
	}
	grid.SetSize(w, h)

	p := tea.NewProgram(model{grid: grid}, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		log.Fatal(err)
	}
}
