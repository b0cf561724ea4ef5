package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("63"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("78"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("197"))
	faintStyle   = lipgloss.NewStyle().Faint(true)
)

// printRunDir lists the artifacts of a run directory, one path per line.
func printRunDir(w io.Writer, title, dir string) {
	fmt.Fprintln(w, headerStyle.Render(title))
	fmt.Fprintln(w, faintStyle.Render(dir))
	for _, name := range runArtifacts(dir) {
		fmt.Fprintf(w, "  %s\n", filepath.Join(dir, name))
	}
}

// runArtifacts returns the sorted names of files in dir, descending one level
// into subdirectories such as the specialist critiques.
func runArtifacts(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
			continue
		}
		sub, err := os.ReadDir(filepath.Join(dir, e.Name()))
		if err != nil {
			continue
		}
		for _, s := range sub {
			if !s.IsDir() {
				names = append(names, filepath.Join(e.Name(), s.Name()))
			}
		}
	}
	sort.Strings(names)
	return names
}

func printStatus(w io.Writer, ok bool, msg string) {
	if ok {
		fmt.Fprintln(w, successStyle.Render(msg))
		return
	}
	fmt.Fprintln(w, warnStyle.Render(msg))
}
