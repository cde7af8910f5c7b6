package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"aulaplan/internal/document"
	"aulaplan/internal/planning"

	"github.com/spf13/cobra"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <curriculum.pdf>",
	Short: "Store a curriculum PDF and extract subject, grade, competencies and blocks",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := initApp(ctx, true)
		defer a.Close()

		pdf, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("Failed to read %s: %v", args[0], err)
		}

		fmt.Printf("📄 Analyzing %s...\n", filepath.Base(args[0]))
		up, err := a.svc.Upload(ctx, filepath.Base(args[0]), pdf)
		if err != nil {
			log.Fatalf("Analysis failed: %v", err)
		}
		if up.Reused {
			fmt.Println("♻️  Same file analyzed before, reusing the stored analysis.")
		}

		fmt.Printf("🆔 Curriculum: %s\n", up.Curriculum.ID)
		fmt.Printf("📚 Subject: %s\n", up.Analysis.Subject)
		fmt.Printf("🎓 Grade: %s\n", up.Analysis.Grade)
		fmt.Printf("🎯 Competencies (%d):\n", len(up.Analysis.Competencies))
		for _, c := range up.Analysis.Competencies {
			fmt.Printf("  - %s\n", c)
		}
		fmt.Printf("🧱 Blocks (%d):\n", len(up.Analysis.Blocks))
		for _, b := range up.Analysis.Blocks {
			fmt.Printf("  - %s\n", b)
		}
		if up.Incomplete {
			fmt.Println("⚠️  The analysis is incomplete: review subject and grade before generating.")
		}
	},
}

var genFlags struct {
	docType     string
	subject     string
	department  string
	grade       string
	hours       int
	language    string
	sas         int
	fullCourse  bool
	methodology []string
	needs       []string
	otherNeeds  string
	ideas       []string
	out         string
}

var generateCmd = &cobra.Command{
	Use:   "generate <curriculum.pdf>",
	Short: "Generate a pedagogical proposal or a set of learning situations",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := initApp(ctx, true)
		defer a.Close()

		docType, err := planning.ParseDocType(genFlags.docType)
		if err != nil {
			log.Fatalf("%v", err)
		}
		pdf, err := os.ReadFile(args[0])
		if err != nil {
			log.Fatalf("Failed to read %s: %v", args[0], err)
		}

		fmt.Println("🔍 Analyzing curriculum...")
		up, err := a.svc.Upload(ctx, filepath.Base(args[0]), pdf)
		if err != nil {
			log.Fatalf("Analysis failed: %v", err)
		}

		tc := up.Context
		if a.cfg.Document.Language != "" {
			tc.Language = a.cfg.Document.Language
		}
		applyContextFlags(cmd, &tc)

		fmt.Printf("🚀 Generating %s for %s (%s)...\n", docType.Title(), tc.Subject, tc.GradeLevel)
		start := time.Now()
		doc, err := a.svc.Generate(ctx, up.Curriculum.ID, tc, docType)
		if err != nil {
			log.Fatalf("Generation failed: %v", err)
		}
		fmt.Printf("✅ Generated in %v. Document: %s (%d sections)\n",
			time.Since(start).Round(time.Second), doc.ID, len(document.Split(doc.Markdown)))

		if genFlags.out != "" {
			if err := os.WriteFile(genFlags.out, []byte(doc.Markdown), 0o644); err != nil {
				log.Fatalf("Failed to write %s: %v", genFlags.out, err)
			}
			fmt.Printf("💾 Written to %s\n", genFlags.out)
		}
	},
}

// applyContextFlags overrides the prefilled context with the flags the user
// actually set.
func applyContextFlags(cmd *cobra.Command, tc *planning.TeacherContext) {
	f := cmd.Flags()
	if f.Changed("subject") {
		tc.Subject = genFlags.subject
	}
	if f.Changed("department") {
		tc.Department = genFlags.department
	}
	if f.Changed("grade") {
		tc.GradeLevel = genFlags.grade
	}
	if f.Changed("hours") {
		tc.WeeklyHours = genFlags.hours
	}
	if f.Changed("language") {
		tc.Language = genFlags.language
	}
	if f.Changed("sas") {
		tc.NumberOfSAs = genFlags.sas
	}
	if f.Changed("full-course") {
		tc.GenerateFullCourse = genFlags.fullCourse
	}
	if f.Changed("methodology") {
		tc.MethodologyPreference = genFlags.methodology
	}
	if f.Changed("needs") {
		tc.SelectedNeeds = genFlags.needs
	}
	if f.Changed("other-needs") {
		tc.OtherNeeds = genFlags.otherNeeds
	}
	if f.Changed("idea") {
		tc.SAIdeas = genFlags.ideas
	}
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored documents, most recently updated first",
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := initApp(ctx, false)
		defer a.Close()

		docs, err := a.svc.Documents(ctx)
		if err != nil {
			log.Fatalf("Failed to list documents: %v", err)
		}
		if len(docs) == 0 {
			fmt.Println("No documents yet. Run 'aulaplan generate' first.")
			return
		}
		for _, d := range docs {
			fmt.Printf("%s  %-28s %-12s %s  %s\n", d.ID, d.Title, d.Context.Subject, d.Context.GradeLevel,
				d.UpdatedAt.Local().Format("2006-01-02 15:04"))
		}
	},
}

var refineInstructions string

var refineCmd = &cobra.Command{
	Use:   "refine <doc-id>",
	Short: "Ask the AI to revise a stored document following your instructions",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ctx := context.Background()
		a := initApp(ctx, true)
		defer a.Close()

		fmt.Println("✍️  Refining document...")
		doc, err := a.svc.Refine(ctx, args[0], refineInstructions)
		if err != nil {
			log.Fatalf("Refinement failed: %v", err)
		}
		revs, err := a.svc.Revisions(ctx, doc.ID)
		if err != nil {
			log.Fatalf("Failed to list revisions: %v", err)
		}
		fmt.Printf("✅ Document refined. Revision %d stored.\n", len(revs))
	},
}

func init() {
	f := generateCmd.Flags()
	f.StringVarP(&genFlags.docType, "type", "t", string(planning.DocTypeSituation), "Document type: SITUACION or PROPUESTA")
	f.StringVar(&genFlags.subject, "subject", "", "Subject (defaults to the analyzed one)")
	f.StringVar(&genFlags.department, "department", "", "Department")
	f.StringVar(&genFlags.grade, "grade", "", "Grade level (defaults to the analyzed one)")
	f.IntVar(&genFlags.hours, "hours", 3, "Weekly hours")
	f.StringVarP(&genFlags.language, "language", "l", "", "Document language: "+strings.Join(planning.Languages, ", "))
	f.IntVar(&genFlags.sas, "sas", 2, "Number of learning situations")
	f.BoolVar(&genFlags.fullCourse, "full-course", false, "Plan the whole course instead of a fixed number of situations")
	f.StringSliceVar(&genFlags.methodology, "methodology", nil, "Preferred methodologies")
	f.StringSliceVar(&genFlags.needs, "needs", nil, "Group needs to attend to")
	f.StringVar(&genFlags.otherNeeds, "other-needs", "", "Other needs, free text")
	f.StringArrayVar(&genFlags.ideas, "idea", nil, "Idea for a learning situation (repeatable, in order)")
	f.StringVarP(&genFlags.out, "out", "o", "", "Also write the generated markdown to this file")

	refineCmd.Flags().StringVarP(&refineInstructions, "instructions", "i", "", "What to change")
	_ = refineCmd.MarkFlagRequired("instructions")
}
