package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"

	"studykit/internal/app"
	"studykit/internal/progress"
	"studykit/internal/tasks"
)

// studyctl runs the pipeline locally against a file or stdin, with no
// gateway, queue, or store involved.
func main() {
	task := flag.String("task", "summarize", "task to run: summarize, adapt, flashcards")
	file := flag.String("file", "", "input file (default: read stdin)")
	level := flag.String("level", "Intermediate", "reading level for adapt: Beginner, Intermediate, Expert")
	cards := flag.Int("cards", 0, "number of flashcards to generate (0 = default)")
	flag.Parse()

	text, err := readInput(*file)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
	if strings.TrimSpace(text) == "" {
		fmt.Fprintln(os.Stderr, color.RedString("error: input is empty"))
		os.Exit(1)
	}

	spinner := getSpinner("Working...")
	obs := progress.Func(func(message string, _ float64) {
		spinner.Describe(color.CyanString(message))
		_ = spinner.Add(1)
	})

	deps, err := app.BuildLocal(obs)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err = run(ctx, deps, *task, text, *level, *cards)
	_ = spinner.Finish()
	fmt.Println()
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error: %v", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, deps app.Deps, task, text, level string, cards int) error {
	switch task {
	case "summarize":
		summary, err := deps.Summarizer.Summarize(ctx, text)
		if err != nil {
			return err
		}
		fmt.Println(color.GreenString("Summary:"))
		fmt.Println(summary.Text)
		if len(summary.Highlights) > 0 {
			fmt.Println()
			fmt.Println(color.GreenString("Key Highlights:"))
			for _, h := range summary.Highlights {
				fmt.Println(h)
			}
		}
	case "adapt":
		adaptation, err := deps.Adapter.Adapt(ctx, text, tasks.NormalizeLevel(level))
		if err != nil {
			return err
		}
		if adaptation.Text == "" {
			fmt.Println(color.YellowString("No usable adaptation was produced; raw model output follows."))
			for _, r := range adaptation.Raw {
				fmt.Println(r)
			}
			return nil
		}
		fmt.Println(color.GreenString("Adapted for %s (complexity %.2f):", adaptation.Level, adaptation.Complexity))
		fmt.Println(adaptation.Text)
	case "flashcards":
		set, err := deps.Flashcards.Generate(ctx, text, cards)
		if err != nil {
			return err
		}
		if len(set.Cards) == 0 {
			fmt.Println(color.YellowString("No flashcards could be parsed; raw model output follows."))
			for _, r := range set.Raw {
				fmt.Println(r)
			}
			return nil
		}
		fmt.Println(color.GreenString("Flashcards:"))
		for i, c := range set.Cards {
			fmt.Printf("%d. Q: %s\n   A: %s\n", i+1, c.Question, c.Answer)
		}
	default:
		return fmt.Errorf("unknown task %q (valid: summarize, adapt, flashcards)", task)
	}
	return nil
}

func readInput(path string) (string, error) {
	if path == "" {
		b, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(b), nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", path, err)
	}
	return string(b), nil
}

func getSpinner(description string) *progressbar.ProgressBar {
	return progressbar.NewOptions(-1,
		progressbar.OptionSetDescription(color.CyanString(description)),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionSetWidth(20),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetRenderBlankState(true),
		progressbar.OptionSetWriter(os.Stderr),
	)
}
