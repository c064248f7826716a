package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ramonehamilton/flashdeck/internal/app"
	"github.com/ramonehamilton/flashdeck/internal/quiz"
	"github.com/ramonehamilton/flashdeck/internal/richtext"
	"github.com/ramonehamilton/flashdeck/internal/storage/models"
)

const (
	hiddenMask  = "_"
	skipCommand = ":skip"
	quitCommand = ":quit"
)

// localizedError shows the translated message while keeping the domain error
// available to errors.Is.
type localizedError struct {
	msg string
	err error
}

func (e *localizedError) Error() string { return e.msg }
func (e *localizedError) Unwrap() error { return e.err }

func localize(rt *app.Runtime, err error) error {
	if err == nil {
		return nil
	}
	return &localizedError{msg: rt.Translator.ErrorMessage(err), err: err}
}

func runQuizCommand(rt *app.Runtime, args []string, in io.Reader, out io.Writer) error {
	fs := flag.NewFlagSet("quiz", flag.ExitOnError)
	deckRef := fs.String("deck", "", "Deck id or title (required)")
	mode := fs.String("mode", rt.Config.Quiz.DefaultMode, "Quiz mode: view, solve, keyword or retryWrong")
	minWrong := fs.Int("min-wrong", rt.Config.Quiz.RetryWrongThreshold, "Minimum wrong count for retryWrong mode")
	keywords := fs.String("keywords", "", "Comma-separated keywords for keyword mode")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *deckRef == "" {
		return fmt.Errorf("quiz requires -deck")
	}

	criteria := quiz.Criteria{
		Mode:           models.QuizMode(*mode),
		WrongThreshold: *minWrong,
	}
	for _, k := range strings.Split(*keywords, ",") {
		if k = strings.TrimSpace(k); k != "" {
			criteria.Keywords = append(criteria.Keywords, k)
		}
	}

	deck, err := findDeck(rt.Decks, *deckRef)
	if err != nil {
		return localize(rt, err)
	}
	_, err = runQuiz(rt, deck, criteria, in, out)
	return err
}

// runQuiz plays one session on the terminal. Solve mode reads typed answers;
// every other mode reveals the back and asks for a self-grade. End of input
// stops the session early and still prints the totals.
func runQuiz(rt *app.Runtime, deck models.Deck, criteria quiz.Criteria, in io.Reader, out io.Writer) (quiz.Summary, error) {
	if !criteria.Mode.Valid() {
		return quiz.Summary{}, fmt.Errorf("unknown quiz mode %q", criteria.Mode)
	}
	cards, err := rt.Selector.Select(deck, criteria)
	if err != nil {
		if criteria.Mode == models.QuizModeRetryWrong && errors.Is(err, models.ErrNoMatchingCards) {
			return quiz.Summary{}, &localizedError{
				msg: rt.Translator.T("noCardsWithThreshold", map[string]any{"Threshold": criteria.WrongThreshold}),
				err: err,
			}
		}
		return quiz.Summary{}, localize(rt, err)
	}
	session, err := quiz.Start(deck.ID, cards, criteria.Mode, rt.Decks)
	if err != nil {
		return quiz.Summary{}, localize(rt, err)
	}

	t := rt.Translator.T
	scanner := bufio.NewScanner(in)
	readLine := func(prompt string) (string, bool) {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return "", false
		}
		return strings.TrimSpace(scanner.Text()), true
	}

	fmt.Fprintf(out, "%s: %s (%d %s)\n\n", t("deckTitle", nil), deck.Title, len(cards), t("cards", nil))

	for session.State() != quiz.StateFinished {
		card, err := session.CurrentCard()
		if err != nil {
			return session.Summary(), localize(rt, err)
		}
		index, total := session.Progress()
		answer := richtext.StripToPlainText(richtext.RevealAll(card.Back))
		fmt.Fprintf(out, "[%d/%d] %s: %s\n", index+1, total, t("question", nil), richtext.MaskHidden(card.Front, hiddenMask))
		shownAt := time.Now()
		skipped := false

		var result quiz.AnswerResult
		if criteria.Mode == models.QuizModeSolve {
			input, ok := readLine(t("enterAnswer", nil) + "> ")
			if !ok || input == quitCommand {
				break
			}
			if input == skipCommand {
				skipped = true
				result, err = session.Skip()
			} else {
				result, err = session.Submit(input)
				if err == nil {
					printGrade(rt, out, result.Correct, answer)
				}
			}
		} else {
			if _, ok := readLine("(" + t("showAnswer", nil) + ") "); !ok {
				break
			}
			fmt.Fprintf(out, "  %s\n", answer)
			grade, ok := readLine("[y/n/s/q]> ")
			if !ok {
				break
			}
			switch strings.ToLower(grade) {
			case "q", quitCommand:
				return finishQuiz(rt, out, session.Summary()), nil
			case "s", skipCommand:
				skipped = true
				result, err = session.Skip()
			default:
				correct := strings.HasPrefix(strings.ToLower(grade), "y")
				result, err = session.Answer(correct)
				if err == nil {
					printGrade(rt, out, correct, "")
				}
			}
		}
		if err != nil {
			return session.Summary(), localize(rt, err)
		}
		if skipped {
			rt.Metrics.RecordSkip(time.Since(shownAt))
		} else {
			rt.Metrics.RecordAnswer(time.Since(shownAt), result.Correct)
		}
		if result.Summary != nil {
			fmt.Fprintln(out, t("quizFinished", nil))
			return finishQuiz(rt, out, *result.Summary), nil
		}
		fmt.Fprintln(out)
	}
	return finishQuiz(rt, out, session.Summary()), nil
}

func printGrade(rt *app.Runtime, out io.Writer, correct bool, answer string) {
	label := rt.Translator.T("wrong", nil)
	if correct {
		label = rt.Translator.T("correct", nil)
	}
	if answer != "" && !correct {
		fmt.Fprintf(out, "  %s (%s)\n", label, answer)
		return
	}
	fmt.Fprintf(out, "  %s\n", label)
}

func finishQuiz(rt *app.Runtime, out io.Writer, summary quiz.Summary) quiz.Summary {
	fmt.Fprintln(out, rt.Translator.T("sessionSummary", map[string]any{
		"Correct": summary.TotalCorrect,
		"Wrong":   summary.TotalWrong,
	}))
	if summary.Streaks.LongestCorrectStreak > 1 {
		fmt.Fprintf(out, "Longest streak: %d\n", summary.Streaks.LongestCorrectStreak)
	}
	if latency := rt.Metrics.AnswerLatency.Stats(); latency.Count > 0 {
		fmt.Fprintf(out, "Median answer time: %.1fs\n", latency.P50/1000)
	}
	return summary
}
