package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"

	"aulaplan/internal/document"
	"aulaplan/internal/editor"
	"aulaplan/internal/export"
	"aulaplan/internal/sda"
	"aulaplan/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// readMarkdown loads a markdown file, or the stored document when the
// argument is not a file.
func readMarkdown(ctx context.Context, arg string) string {
	data, err := os.ReadFile(arg)
	if err == nil {
		return string(data)
	}
	if !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Failed to read %s: %v", arg, err)
	}
	a := initApp(ctx, false)
	defer a.Close()
	doc, err := a.svc.Document(ctx, arg)
	if err != nil {
		log.Fatalf("%s is neither a file nor a stored document: %v", arg, err)
	}
	return doc.Markdown
}

var sectionsCmd = &cobra.Command{
	Use:   "sections <doc.md|doc-id>",
	Short: "List the sections of a document with their ids",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sections := document.Split(readMarkdown(context.Background(), args[0]))
		for i, line := range document.Outline(sections) {
			if sda.IsLearningSituation(sections[i].Title) {
				line += "  [SdA]"
			}
			fmt.Printf("%3d  %s\n", sections[i].ID, line)
		}
	},
}

var sdaSection int

var sdaCmd = &cobra.Command{
	Use:   "sda <doc.md|doc-id>",
	Short: "Print the structured record of a learning situation section as JSON",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		sections := document.Split(readMarkdown(context.Background(), args[0]))
		sec, ok := document.Find(sections, sdaSection)
		if !ok {
			log.Fatalf("%v: %d", editor.ErrSectionNotFound, sdaSection)
		}
		if !sda.IsLearningSituation(sec.Title) {
			log.Fatalf("Section %d (%s): %v", sec.ID, sec.Title, editor.ErrNotLearningSituation)
		}
		out, err := json.MarshalIndent(sda.Extract(sec.Content), "", "  ")
		if err != nil {
			log.Fatalf("Failed to encode record: %v", err)
		}
		fmt.Println(string(out))
	},
}

var exportFlags struct {
	format string
	out    string
}

var exportCmd = &cobra.Command{
	Use:   "export <doc-id>",
	Short: "Export a stored document as markdown, HTML or ODT",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		f, err := export.ParseFormat(exportFlags.format)
		if err != nil {
			log.Fatalf("%v", err)
		}
		a := initApp(ctx, false)
		defer a.Close()

		dl, err := a.svc.Export(ctx, args[0], f)
		if err != nil {
			log.Fatalf("Export failed: %v", err)
		}
		path := exportFlags.out
		if path == "" {
			path = dl.FileName
		}
		if err := os.WriteFile(path, dl.Body, 0o644); err != nil {
			log.Fatalf("Failed to write %s: %v", path, err)
		}
		fmt.Printf("💾 Exported to %s\n", path)
	},
}

var diffFlags struct {
	from int
	to   int
}

var diffCmd = &cobra.Command{
	Use:   "diff <doc-id>",
	Short: "Show the changes between two revisions of a document",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := initApp(ctx, false)
		defer a.Close()

		d, err := a.svc.Diff(ctx, args[0], diffFlags.from, diffFlags.to)
		if err != nil {
			log.Fatalf("Diff failed: %v", err)
		}
		fmt.Printf("📊 Revision %d → %d: +%d -%d\n", d.From, d.To, d.Stats.Added, d.Stats.Removed)
		for _, l := range d.Lines {
			if l.Type == export.LineContext {
				continue
			}
			fmt.Print(export.Unified([]export.DiffLine{l}))
		}
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <doc-id>",
	Short: "Edit a stored document section by section in the terminal",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := initApp(ctx, false)
		defer a.Close()

		doc, err := a.svc.Document(ctx, args[0])
		if err != nil {
			log.Fatalf("Failed to load document: %v", err)
		}
		c, err := a.svc.OpenEditor(ctx, doc.ID)
		if err != nil {
			log.Fatalf("Failed to open editor: %v", err)
		}
		save := func(markdown string) (int, error) {
			rev, err := a.svc.SaveAssembled(ctx, doc.ID, markdown)
			if err != nil || rev == nil {
				return 0, err
			}
			return rev.Seq, nil
		}

		p := tea.NewProgram(tui.New(doc.Title, c, save), tea.WithAltScreen())
		if _, err := p.Run(); err != nil {
			log.Fatalf("Editor failed: %v", err)
		}
	},
}

func init() {
	sdaCmd.Flags().IntVarP(&sdaSection, "section", "s", 0, "Section id as listed by 'aulaplan sections'")
	_ = sdaCmd.MarkFlagRequired("section")

	exportCmd.Flags().StringVarP(&exportFlags.format, "format", "f", "md", "Output format: md, html or odt")
	exportCmd.Flags().StringVarP(&exportFlags.out, "out", "o", "", "Output file (defaults to the document title)")

	diffCmd.Flags().IntVar(&diffFlags.from, "from", 0, "Base revision (defaults to the one before --to)")
	diffCmd.Flags().IntVar(&diffFlags.to, "to", 0, "Target revision (defaults to the latest)")
}
