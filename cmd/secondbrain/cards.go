package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/poiesic/secondbrain"
	"github.com/poiesic/secondbrain/ai"
	"github.com/poiesic/secondbrain/core"
	"github.com/poiesic/secondbrain/knowledge"
	"github.com/poiesic/secondbrain/resummarize"
	"github.com/poiesic/secondbrain/storage"
	"github.com/poiesic/secondbrain/worker"
	"github.com/urfave/cli/v2"
)

func listCardsCommand(c *cli.Context) error {
	brain, err := openBrain(c)
	if err != nil {
		return err
	}
	defer brain.Close()

	var cards []*core.Card
	if tag := c.String("tag"); tag != "" {
		cards, err = brain.Cards().GetCardsByTag(c.Context, tag)
	} else {
		cards, err = brain.Cards().GetCards(c.Context)
	}
	if err != nil {
		return fmt.Errorf("failed to list cards: %w", err)
	}

	fmt.Fprintln(c.App.Writer, cardTable(cards, colorize(c.App.Writer)))
	return nil
}

func addCardCommand(c *cli.Context) error {
	text, err := readInput(c, os.Stdin)
	if err != nil {
		return err
	}
	cardType, err := core.ParseCardType(c.String("type"))
	if err != nil {
		return fmt.Errorf("%w: %q", err, c.String("type"))
	}

	brain, err := openBrain(c)
	if err != nil {
		return err
	}
	defer brain.Close()

	existing, err := brain.Cards().FindCardByContent(c.Context, text)
	switch {
	case err == nil:
		return fmt.Errorf("card %s already has this content", existing.ID)
	case !errors.Is(err, storage.ErrNotFound):
		return err
	}

	card := &core.Card{
		Title:    c.String("title"),
		Content:  text,
		Type:     cardType,
		Source:   c.String("source"),
		Tags:     c.StringSlice("tag"),
		Language: c.String("language"),
	}
	if c.Bool("enrich") {
		if err := enrich(c, brain, card); err != nil {
			return err
		}
	}

	added, err := brain.Cards().AddCards(c.Context, card)
	if err != nil {
		return fmt.Errorf("failed to store card: %w", err)
	}
	fmt.Fprintln(c.App.Writer, added[0].ID)
	return nil
}

// enrich fills the summary, and the title and tags when the user gave none,
// by running the matching tasks concurrently.
func enrich(c *cli.Context, brain *secondbrain.Brain, card *core.Card) error {
	q, err := brain.NewQueue(worker.WithPoolSize(3))
	if err != nil {
		return err
	}
	defer q.Release()

	base := worker.Bundle{
		worker.KeyContent:     card.Content,
		worker.KeyLanguage:    card.Language,
		worker.KeyAIModel:     c.String("model"),
		worker.KeyContentType: card.Type.String(),
	}
	submit := func(task string) (<-chan worker.Bundle, error) {
		in := base.Clone()
		in[worker.KeyTaskType] = task
		_, done, err := q.Submit(c.Context, in)
		return done, err
	}

	summary, err := submit(worker.TaskSummarize)
	if err != nil {
		return err
	}
	var title, tags <-chan worker.Bundle
	if card.Title == "" {
		if title, err = submit(worker.TaskGenerateTitle); err != nil {
			return err
		}
	}
	if len(card.Tags) == 0 {
		if tags, err = submit(worker.TaskGenerateTags); err != nil {
			return err
		}
	}

	result := func(done <-chan worker.Bundle) (string, error) {
		out := <-done
		if msg, failed := out.Err(); failed {
			return "", fmt.Errorf("enrichment failed (%s): %s", out[worker.KeyErrorKind], msg)
		}
		return out.Result(), nil
	}

	if card.Summary, err = result(summary); err != nil {
		return err
	}
	card.SummaryType = core.SummaryConcise.String()
	card.AIModel = c.String("model")
	if title != nil {
		if card.Title, err = result(title); err != nil {
			return err
		}
	}
	if tags != nil {
		joined, err := result(tags)
		if err != nil {
			return err
		}
		if joined != "" {
			card.Tags = strings.Split(joined, ",")
		}
	}
	return nil
}

func resummarizeCommand(c *cli.Context) error {
	if c.Int("batch-size") <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if c.Int("report-interval") <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}

	brain, err := openBrain(c)
	if err != nil {
		return err
	}
	defer brain.Close()

	config := resummarize.DefaultConfig()
	config.BatchSize = c.Int("batch-size")
	config.ReportInterval = c.Int("report-interval")
	config.Model = c.String("model")
	config.MissingOnly = c.Bool("missing-only")
	config.Options.Type = core.ParseSummaryType(c.String("type"))
	config.Options.Language = c.String("language")

	r, err := resummarize.NewResummarizer(brain.Cards(), brain.Manager(), config, c.App.ErrWriter)
	if err != nil {
		return err
	}
	if _, err := r.Run(c.Context); err != nil {
		return fmt.Errorf("resummarizing failed: %w", err)
	}
	return nil
}

func deleteCardsCommand(c *cli.Context) error {
	if !c.Args().Present() {
		return errors.New("at least one card ID is required")
	}

	brain, err := openBrain(c)
	if err != nil {
		return err
	}
	defer brain.Close()

	if err := brain.Cards().DeleteCards(c.Context, c.Args().Slice()...); err != nil {
		return fmt.Errorf("failed to delete cards: %w", err)
	}
	return nil
}

func graphCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("expected exactly one card ID, got %d", c.NArg())
	}

	brain, err := openBrain(c)
	if err != nil {
		return err
	}
	defer brain.Close()

	graph, err := brain.Graph().BuildGraph(c.Context, c.Args().First())
	if err != nil {
		return err
	}

	w := c.App.Writer
	colored := colorize(w)
	fmt.Fprintf(w, "%s\n\n", graph.CentralCard.Title)
	if len(graph.Entities) > 0 {
		fmt.Fprintln(w, entityTable(graph.Entities, colored))
	}
	if len(graph.RelatedCards) > 0 {
		fmt.Fprintln(w, cardTable(graph.RelatedCards, colored))
	}
	if len(graph.Connections) > 0 {
		fmt.Fprintln(w, connectionTable(graph.Connections, colored))
	}

	if width := c.Float64("width"); width > 0 {
		positions, err := knowledge.Layout(graph, knowledge.LayoutOptions{
			Width:  width,
			Height: c.Float64("height"),
		})
		if err != nil {
			return err
		}
		fmt.Fprintln(w, positionTable(positions, colored))
	}
	return nil
}

func connectionsCommand(c *cli.Context) error {
	if c.NArg() != 2 {
		return fmt.Errorf("expected two card IDs, got %d", c.NArg())
	}

	brain, err := openBrain(c)
	if err != nil {
		return err
	}
	defer brain.Close()

	connections, err := brain.Graph().FindConnections(c.Context, c.Args().Get(0), c.Args().Get(1))
	if err != nil {
		return err
	}
	if len(connections) == 0 {
		fmt.Fprintln(c.App.Writer, "No connections found.")
		return nil
	}
	fmt.Fprintln(c.App.Writer, connectionTable(connections, colorize(c.App.Writer)))
	return nil
}

func modelsCommand(c *cli.Context) error {
	cfg, err := readConfig(c, os.Getenv)
	if err != nil {
		return err
	}
	models := ai.DefaultCatalog().Models()
	fmt.Fprintln(c.App.Writer, modelTable(models, cfg.ConfiguredProviders(), colorize(c.App.Writer)))
	return nil
}
