package tasks

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strings"

	"studykit/internal/chunker"
	"studykit/internal/extract"
	"studykit/internal/llm"
)

// complexityTolerance is how far the adapted text's score may drift from
// the level target before we log the divergence. Non-fatal either way.
const complexityTolerance = 0.2

// Adaptation is the result of one reading-level adaptation run. When every
// chunk failed to adapt, Text is empty and Raw carries the unparsed model
// outputs for debugging.
type Adaptation struct {
	Text       string
	Level      Level
	Complexity float64
	Raw        []string
}

// LevelAdapter rewrites text for a target reading level, chunk by chunk.
// Chunks are adapted independently; there is no combining pass.
type LevelAdapter struct {
	d         Dispatcher
	log       *slog.Logger
	chunkSize int
	filter    *extract.LineFilter
}

func NewLevelAdapter(d Dispatcher, log *slog.Logger, chunkSize int) *LevelAdapter {
	return &LevelAdapter{
		d:         d,
		log:       log,
		chunkSize: chunkSize,
		filter:    extract.NewLineFilter(),
	}
}

func (a *LevelAdapter) Adapt(ctx context.Context, text string, level Level) (Adaptation, error) {
	profile, ok := readingLevels[level]
	if !ok {
		level = LevelIntermediate
		profile = readingLevels[level]
	}

	chunks := chunker.Split(text, a.chunkSize)
	var adapted []string
	var raw []string

	for _, c := range chunks {
		out, err := a.d.Dispatch(ctx, llm.TaskAdapt, adaptPrompt(c.Text, level))
		if err != nil {
			if errors.Is(err, llm.ErrAuth) {
				return Adaptation{}, err
			}
			a.log.Warn("chunk adaptation failed, skipping", "chunk", c.Index, "err", err)
			continue
		}
		raw = append(raw, out)
		if out == "" {
			a.log.Warn("model returned empty adaptation, skipping chunk", "chunk", c.Index)
			continue
		}
		cleaned := extract.ParseAdapted(out, a.filter)
		if strings.TrimSpace(cleaned) == "" {
			a.log.Warn("adapted chunk empty after cleaning, skipping", "chunk", c.Index)
			continue
		}
		adapted = append(adapted, cleaned)
	}

	if len(adapted) == 0 {
		a.log.Error("all adapted chunks were empty, returning raw outputs for debugging")
		return Adaptation{Level: level, Raw: raw}, nil
	}

	final := strings.Join(strings.Fields(strings.Join(adapted, " ")), " ")
	score := Complexity(final)
	if math.Abs(score-profile.complexityTarget) > complexityTolerance {
		a.log.Warn("adapted text complexity diverges from target, returning best attempt",
			"level", level,
			"complexity", score,
			"target", profile.complexityTarget,
		)
	}

	return Adaptation{Text: final, Level: level, Complexity: score}, nil
}
