package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/blink-new/studytrack/internal/content"
	"github.com/blink-new/studytrack/internal/ledger"
	"github.com/blink-new/studytrack/internal/quiz"
	"github.com/blink-new/studytrack/internal/quizgen"
	"github.com/spf13/cobra"
)

// generateTimeout bounds one quiz generation request.
const generateTimeout = 2 * time.Minute

var quizCmd = &cobra.Command{
	Use:     "quiz",
	Aliases: []string{"quizzes"},
	Short:   "Manage, take and generate quizzes",
}

var quizAddCmd = &cobra.Command{
	Use:   "add <file>",
	Short: "Import a quiz from a JSON or YAML document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := readInput(cmd, args[0])
		if err != nil {
			return err
		}
		in, err := quiz.ParseDocument(data)
		if err != nil {
			return err
		}

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		q, err := e.deps.Ledger.CreateQuiz(cmd.Context(), e.user.ID, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Added quiz %q with %d questions (%s)\n", q.Title, len(q.Questions), q.ID)
		return nil
	},
}

var quizListCmd = &cobra.Command{
	Use:   "list",
	Short: "List your quizzes and the sample quizzes",
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		query, _ := flags.GetString("query")
		subject, _ := flags.GetString("subject")
		difficulty, _ := flags.GetString("difficulty")
		samples, _ := flags.GetBool("samples")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		quizzes, err := e.deps.Ledger.Quizzes(cmd.Context(), e.user.ID)
		if err != nil {
			return err
		}
		f := ledger.QuizFilter{Query: query, Subject: subject, Difficulty: ledger.Difficulty(difficulty)}
		own := ledger.FilterQuizzes(quizzes, f)
		var sample []ledger.Quiz
		if samples {
			sample = ledger.FilterQuizzes(e.deps.Content.SampleQuizzes(), f)
		}

		out := cmd.OutOrStdout()
		if len(own)+len(sample) == 0 {
			fmt.Fprintln(out, "No quizzes found.")
			return nil
		}
		fmt.Fprintf(out, "%-36s  %-28s  %-16s  %-6s  %4s  %5s\n", "ID", "Title", "Subject", "Level", "Qs", "Min")
		fmt.Fprintln(out, strings.Repeat("─", 104))
		row := func(q ledger.Quiz) {
			fmt.Fprintf(out, "%-36s  %-28s  %-16s  %-6s  %4d  %5d\n",
				q.ID, truncate(q.Title, 28), truncate(q.Subject, 16), q.Difficulty,
				len(q.Questions), q.TimeLimitMinutes)
		}
		for _, q := range own {
			row(q)
		}
		if len(sample) > 0 {
			fmt.Fprintln(out, "Samples")
			for _, q := range sample {
				row(q)
			}
		}
		return nil
	},
}

var quizTakeCmd = &cobra.Command{
	Use:   "take <id>",
	Short: "Take a quiz in the terminal",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		q, err := findQuiz(cmd.Context(), e, args[0])
		if err != nil {
			return err
		}
		res, timedOut, err := takeQuiz(cmd.InOrStdin(), cmd.OutOrStdout(), q, time.Now)
		if err != nil {
			return err
		}
		printQuizResult(cmd.OutOrStdout(), res, timedOut)
		return nil
	},
}

var quizGenerateCmd = &cobra.Command{
	Use:   "generate <material-id>",
	Short: "Draft a quiz from a material with the configured LLM",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		n, _ := cmd.Flags().GetInt("questions")
		difficulty, _ := cmd.Flags().GetString("difficulty")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		ctx := cmd.Context()
		if err := e.enableGenerator(ctx); err != nil {
			return fmt.Errorf("LLM provider not configured: %w", err)
		}
		m, err := e.deps.Ledger.Material(ctx, e.user.ID, args[0])
		if err != nil {
			return fmt.Errorf("material %s: %w", args[0], err)
		}
		quizzes, err := e.deps.Ledger.Quizzes(ctx, e.user.ID)
		if err != nil {
			return err
		}

		fmt.Fprintf(cmd.ErrOrStderr(), "Generating a quiz from %q...\n", m.Title)
		genCtx, cancel := context.WithTimeout(ctx, generateTimeout)
		defer cancel()
		in, err := e.deps.Generator.Generate(genCtx, quizgen.Input{
			Material:   m,
			Questions:  n,
			Difficulty: ledger.Difficulty(difficulty),
			Avoid:      quizgen.PriorPrompts(quizzes, m.ID),
		})
		if err != nil {
			return fmt.Errorf("generate quiz: %w", err)
		}
		q, err := e.deps.Ledger.CreateQuiz(ctx, e.user.ID, in)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created quiz %q with %d questions (%s)\n", q.Title, len(q.Questions), q.ID)
		return nil
	},
}

var quizExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Write a quiz as a JSON document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")

		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		q, err := findQuiz(cmd.Context(), e, args[0])
		if err != nil {
			return err
		}
		data, err := quiz.Export(q)
		if err != nil {
			return err
		}
		if output == "" || output == "-" {
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		}
		return os.WriteFile(output, data, 0o644)
	},
}

var quizRmCmd = &cobra.Command{
	Use:     "rm <id>",
	Aliases: []string{"remove"},
	Short:   "Delete one of your quizzes",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		e, err := openEnv(cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		if err := e.deps.Ledger.RemoveQuiz(cmd.Context(), e.user.ID, args[0]); err != nil {
			return fmt.Errorf("quiz %s: %w", args[0], err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", args[0])
		return nil
	},
}

// findQuiz looks id up among the user's quizzes, then the samples.
func findQuiz(ctx context.Context, e *env, id string) (ledger.Quiz, error) {
	q, err := e.deps.Ledger.Quiz(ctx, e.user.ID, id)
	if err == nil {
		return q, nil
	}
	if !errors.Is(err, ledger.ErrNotFound) {
		return ledger.Quiz{}, err
	}
	if q, ok := content.SampleQuiz(e.deps.Content, id); ok {
		return q, nil
	}
	return ledger.Quiz{}, fmt.Errorf("quiz %s: %w", id, err)
}

// takeQuiz asks each question on out and reads answers as option numbers
// from in. Once the time limit has passed the remaining questions are
// left unanswered.
func takeQuiz(in io.Reader, out io.Writer, q ledger.Quiz, now func() time.Time) (quiz.Result, bool, error) {
	attempt := quiz.NewAttempt(q)
	sc := bufio.NewScanner(in)

	var deadline time.Time
	if q.TimeLimitMinutes > 0 {
		deadline = now().Add(time.Duration(q.TimeLimitMinutes) * time.Minute)
		fmt.Fprintf(out, "%s: %d questions, %d minutes.\n", q.Title, len(q.Questions), q.TimeLimitMinutes)
	}

	timedOut := false
	for !attempt.Done() {
		question, _ := attempt.Current()
		fmt.Fprintf(out, "\nQ%d. %s\n", attempt.Index()+1, question.Prompt)
		for i, opt := range question.Options {
			fmt.Fprintf(out, "  %d) %s\n", i+1, opt)
		}

		answered := false
		for !answered {
			fmt.Fprint(out, "> ")
			if !sc.Scan() {
				if err := sc.Err(); err != nil {
					return quiz.Result{}, false, err
				}
				res, err := attempt.Result()
				return res, false, err
			}
			if !deadline.IsZero() && now().After(deadline) {
				timedOut = true
				break
			}
			n, err := strconv.Atoi(strings.TrimSpace(sc.Text()))
			if err != nil || attempt.Answer(n-1) != nil {
				fmt.Fprintf(out, "Enter a number from 1 to %d.\n", len(question.Options))
				continue
			}
			answered = true
		}
		if timedOut {
			break
		}
	}

	res, err := attempt.Result()
	return res, timedOut, err
}

func printQuizResult(out io.Writer, res quiz.Result, timedOut bool) {
	fmt.Fprintln(out)
	if timedOut {
		fmt.Fprintln(out, "Time is up.")
	}
	verdict := "Passed"
	if !res.Passed {
		verdict = "Not passed"
	}
	fmt.Fprintf(out, "Score: %d%% (%d/%d), %s\n", res.Score, res.Correct, res.Total, verdict)
	for i, r := range res.Reviews {
		mark := "✓"
		if !r.Correct {
			mark = "✗"
		}
		fmt.Fprintf(out, "%s Q%d %s\n", mark, i+1, r.Question.Prompt)
		if !r.Correct {
			fmt.Fprintf(out, "    answer: %s\n", r.Question.Options[r.Question.CorrectAnswer])
		}
		if r.Question.Explanation != "" && !r.Correct {
			fmt.Fprintf(out, "    %s\n", r.Question.Explanation)
		}
	}
}

// readInput reads path, or stdin when path is "-".
func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return data, nil
}

func init() {
	quizListCmd.Flags().StringP("query", "q", "", "Match title, description or tags")
	quizListCmd.Flags().StringP("subject", "s", "", "Only this subject")
	quizListCmd.Flags().StringP("difficulty", "d", "", "Only easy, medium or hard")
	quizListCmd.Flags().Bool("samples", true, "Include the sample quizzes")

	quizGenerateCmd.Flags().IntP("questions", "n", quizgen.DefaultQuestions, "Number of questions")
	quizGenerateCmd.Flags().StringP("difficulty", "d", string(ledger.DifficultyMedium), "easy, medium or hard")

	quizExportCmd.Flags().StringP("output", "o", "", "Write to this file instead of stdout")

	quizCmd.AddCommand(quizAddCmd)
	quizCmd.AddCommand(quizListCmd)
	quizCmd.AddCommand(quizTakeCmd)
	quizCmd.AddCommand(quizGenerateCmd)
	quizCmd.AddCommand(quizExportCmd)
	quizCmd.AddCommand(quizRmCmd)
}
