// Package session drives one interactive revision run: it asks questions
// chosen by the knowledge scheduler, judges the answers, and loops until
// every card is mastered or the user cancels.
package session

import (
	"context"
	"errors"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Kestrer/revise/knowledge"
	"github.com/Kestrer/revise/parser"
)

// ErrCancelled is returned by an IO implementation when the user ends the
// session early. Run treats it as a clean exit, not a failure.
var ErrCancelled = errors.New("session cancelled")

// Question is everything the IO layer needs to put one prompt in front of
// the user.
type Question struct {
	// Title is the set title, shown once per question.
	Title string
	// Distribution counts cards at each knowledge level, least to best known.
	Distribution [4]int
	// Prompt is a concrete string generated from one of the card's term
	// patterns.
	Prompt string
}

// Outcome is what Run tells the IO layer after judging an answer.
type Outcome struct {
	// Correct is the judgement before any override.
	Correct bool
	// Expected holds the card's definition pattern texts, for display when
	// the answer was wrong.
	Expected []string
}

// IO is the user-facing half of a session. Implementations return
// ErrCancelled (or wrap io.EOF into it) when the user quits, and abort any
// blocking read with ErrCancelled once ctx is done.
type IO interface {
	// Ask displays the question and returns the user's raw answer line.
	Ask(ctx context.Context, q Question) (string, error)
	// Report shows the outcome of the last answer. When the answer was
	// wrong it returns override=true if the user marks it correct anyway.
	Report(ctx context.Context, o Outcome) (override bool, err error)
	// Retype prompts for the expected answer to be typed out after a miss
	// and returns the line.
	Retype(ctx context.Context) (string, error)
}

// Config assembles a session. Title, Cards, Store and IO are required;
// Rand defaults to a time-seeded source and Weights to equal.
type Config struct {
	Title   string
	Cards   []*parser.Card
	Store   knowledge.Store
	IO      IO
	Rand    *rand.Rand
	Weights [3]float64
}

// Run executes the session loop until mastery or cancellation. The store
// is written through after every answer, so an interrupt at any point
// loses at most the in-flight question. The driver requires a non-empty
// set; validation already refuses to load one, so an empty Cards slice is
// a caller bug, not an empty session.
func Run(ctx context.Context, cfg Config) error {
	if len(cfg.Cards) == 0 {
		return errors.New("no cards to revise")
	}

	// The same card may appear in more than one file; it is still one card.
	keys := make([]knowledge.Key, 0, len(cfg.Cards))
	byKey := make(map[knowledge.Key]*parser.Card, len(cfg.Cards))
	for _, card := range cfg.Cards {
		key := knowledge.KeyFor(card.TermTexts(), card.DefinitionTexts())
		if _, ok := byKey[key]; ok {
			continue
		}
		keys = append(keys, key)
		byKey[key] = card
	}

	sched, err := knowledge.NewScheduler(ctx, cfg.Store, keys, knowledge.SchedulerConfig{
		Weights: cfg.Weights,
		Rand:    cfg.Rand,
	})
	if err != nil {
		return err
	}

	rng := cfg.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	log := logrus.WithFields(logrus.Fields{
		"session": uuid.NewString(),
		"title":   cfg.Title,
		"cards":   len(cfg.Cards),
	})
	log.Debug("session started")

	for {
		if ctx.Err() != nil {
			log.Debug("session cancelled")
			return nil
		}

		key, ok := sched.Next()
		if !ok {
			log.Debug("all cards mastered")
			return nil
		}
		card := byKey[key]

		term := card.Terms[rng.Intn(len(card.Terms))]
		prompt := term.Pattern.Generate(rng)

		answer, err := cfg.IO.Ask(ctx, Question{
			Title:        cfg.Title,
			Distribution: sched.Distribution(),
			Prompt:       prompt,
		})
		if errors.Is(err, ErrCancelled) {
			log.Debug("session cancelled")
			return nil
		}
		if err != nil {
			return err
		}

		correct := judge(card, answer)
		override, err := cfg.IO.Report(ctx, Outcome{
			Correct:  correct,
			Expected: card.DefinitionTexts(),
		})
		if errors.Is(err, ErrCancelled) {
			// The answer was already judged; record it before leaving so
			// the work is not lost.
			if rerr := sched.Record(context.WithoutCancel(ctx), key, correct); rerr != nil {
				return rerr
			}
			log.Debug("session cancelled")
			return nil
		}
		if err != nil {
			return err
		}
		if override {
			correct = true
		}

		if !correct {
			if err := drill(ctx, cfg.IO, card); err != nil {
				// The miss still counts; persist it before leaving.
				if rerr := sched.Record(context.WithoutCancel(ctx), key, false); rerr != nil {
					return rerr
				}
				if errors.Is(err, ErrCancelled) {
					log.Debug("session cancelled")
					return nil
				}
				return err
			}
		}

		log.WithFields(logrus.Fields{
			"term":    term.Text,
			"correct": correct,
			"level":   sched.Level(key),
		}).Debug("answer recorded")

		// A fully answered question is recorded even when cancellation
		// raced the answer.
		if err := sched.Record(context.WithoutCancel(ctx), key, correct); err != nil {
			return err
		}
	}
}

// drill makes the learner type the missed answer out until it judges
// correct, so the correction is practiced rather than just shown.
func drill(ctx context.Context, io IO, card *parser.Card) error {
	for {
		if err := ctx.Err(); err != nil {
			return ErrCancelled
		}
		line, err := io.Retype(ctx)
		if err != nil {
			return err
		}
		if judge(card, line) {
			return nil
		}
	}
}

// judge reports whether answer satisfies the card: parsed as a guess list,
// every definition variant must match at least one guess.
func judge(card *parser.Card, answer string) bool {
	guesses := parser.ParseGuess(answer)
	for _, def := range card.Definitions {
		matched := false
		for _, guess := range guesses {
			if def.Pattern.Accepts(guess) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}
