package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/worker"
	"github.com/urfave/cli/v2"
)

var errNoInput = errors.New("no input: pass text as arguments, --file or stdin")

// readInput takes the text from --file, the arguments or a piped stdin, in
// that order.
func readInput(c *cli.Context, stdin *os.File) (string, error) {
	if path := c.String("file"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("failed to read %s: %w", path, err)
		}
		return string(data), nil
	}
	if c.Args().Present() {
		return strings.Join(c.Args().Slice(), " "), nil
	}
	if stdin != nil && !isTerminal(stdin) {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		if strings.TrimSpace(string(data)) != "" {
			return string(data), nil
		}
	}
	return "", errNoInput
}

func isTerminal(f *os.File) bool {
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// runTask executes one bundle through the task queue and returns its result.
func runTask(c *cli.Context, in worker.Bundle) (string, error) {
	brain, err := openBrain(c)
	if err != nil {
		return "", err
	}
	defer brain.Close()

	q, err := brain.NewQueue(worker.WithPoolSize(1))
	if err != nil {
		return "", err
	}
	defer q.Release()

	out := q.Run(c.Context, in)
	if msg, failed := out.Err(); failed {
		return "", fmt.Errorf("%s failed (%s): %s", in[worker.KeyTaskType], out[worker.KeyErrorKind], msg)
	}
	return out.Result(), nil
}

func textBundle(c *cli.Context, task string) (worker.Bundle, error) {
	text, err := readInput(c, os.Stdin)
	if err != nil {
		return nil, err
	}
	return worker.Bundle{
		worker.KeyTaskType: task,
		worker.KeyContent:  text,
		worker.KeyLanguage: c.String("language"),
		worker.KeyAIModel:  c.String("model"),
	}, nil
}

func mediaBundle(c *cli.Context, task string) (worker.Bundle, error) {
	if c.NArg() != 1 {
		return nil, fmt.Errorf("expected exactly one URI, got %d", c.NArg())
	}
	return worker.Bundle{
		worker.KeyTaskType: task,
		worker.KeyURI:      c.Args().First(),
		worker.KeyLanguage: c.String("language"),
		worker.KeyAIModel:  c.String("model"),
	}, nil
}

func summarizeCommand(c *cli.Context) error {
	if c.Bool("detect") {
		return detectAndSummarize(c)
	}

	in, err := textBundle(c, worker.TaskSummarize)
	if err != nil {
		return err
	}
	in[worker.KeySummaryType] = core.ParseSummaryType(c.String("type")).String()
	in[worker.KeyMaxLength] = strconv.Itoa(c.Int("max-length"))
	in[worker.KeyCustomInstructions] = c.String("instructions")
	in[worker.KeyContentType] = c.String("card-type")

	summary, err := runTask(c, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, summary)
	return nil
}

func detectAndSummarize(c *cli.Context) error {
	text, err := readInput(c, os.Stdin)
	if err != nil {
		return err
	}

	brain, err := openBrain(c)
	if err != nil {
		return err
	}
	defer brain.Close()

	opts := core.SummarizationOptions{
		Type:               core.ParseSummaryType(c.String("type")),
		Language:           c.String("language"),
		MaxLength:          c.Int("max-length"),
		CustomInstructions: c.String("instructions"),
	}
	res, err := brain.Summarizer().Summarize(c.Context, text, opts, c.String("model"))
	if err != nil {
		return err
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Category: %s\n\n", res.Category)
	if len(res.Entities) > 0 {
		fmt.Fprintln(w, entityTable(res.Entities, colorize(w)))
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, res.Summary)
	return nil
}

func tagsCommand(c *cli.Context) error {
	in, err := textBundle(c, worker.TaskGenerateTags)
	if err != nil {
		return err
	}
	in[worker.KeyMaxTags] = strconv.Itoa(c.Int("max"))

	tags, err := runTask(c, in)
	if err != nil {
		return err
	}
	for _, tag := range strings.Split(tags, ",") {
		if tag != "" {
			fmt.Fprintln(c.App.Writer, tag)
		}
	}
	return nil
}

func titleCommand(c *cli.Context) error {
	in, err := textBundle(c, worker.TaskGenerateTitle)
	if err != nil {
		return err
	}
	title, err := runTask(c, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, title)
	return nil
}

func transcribeCommand(c *cli.Context) error {
	in, err := mediaBundle(c, worker.TaskTranscribe)
	if err != nil {
		return err
	}
	text, err := runTask(c, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, text)
	return nil
}

func ocrCommand(c *cli.Context) error {
	in, err := mediaBundle(c, worker.TaskExtractText)
	if err != nil {
		return err
	}
	text, err := runTask(c, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(c.App.Writer, text)
	return nil
}
