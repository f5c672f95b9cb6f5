// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "secondbrain",
		Usage: "AI summaries, tags and knowledge graphs for captured notes",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML configuration file",
			},
			&cli.StringFlag{
				Name:  "cost",
				Usage: "Cost preference when no model is named (free_only, prefer_free, balanced, quality_first)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "summarize",
				Usage:     "Summarize text from arguments, a file or stdin",
				ArgsUsage: "[text]",
				Action:    summarizeCommand,
				Flags: append(inputFlags(),
					&cli.StringFlag{
						Name:    "type",
						Aliases: []string{"t"},
						Usage:   "Summary type (concise, detailed, bullets, qa, key_facts)",
						Value:   "concise",
					},
					&cli.IntFlag{
						Name:  "max-length",
						Usage: "Maximum summary length in tokens",
						Value: 1000,
					},
					&cli.StringFlag{
						Name:  "instructions",
						Usage: "Additional instructions for the model",
					},
					&cli.StringFlag{
						Name:  "card-type",
						Usage: "Card type of the content (url, search, pdf, note, audio)",
					},
					&cli.BoolFlag{
						Name:  "detect",
						Usage: "Detect the content category and extract entities first",
					},
				),
			},
			{
				Name:      "tags",
				Usage:     "Suggest tags for text",
				ArgsUsage: "[text]",
				Action:    tagsCommand,
				Flags: append(inputFlags(),
					&cli.IntFlag{
						Name:  "max",
						Usage: "Maximum number of tags",
						Value: 5,
					},
				),
			},
			{
				Name:      "title",
				Usage:     "Suggest a title for text",
				ArgsUsage: "[text]",
				Action:    titleCommand,
				Flags:     inputFlags(),
			},
			{
				Name:      "transcribe",
				Usage:     "Transcribe an audio file",
				ArgsUsage: "<uri>",
				Action:    transcribeCommand,
				Flags:     mediaFlags(),
			},
			{
				Name:      "ocr",
				Usage:     "Extract the text in an image",
				ArgsUsage: "<uri>",
				Action:    ocrCommand,
				Flags:     mediaFlags(),
			},
			{
				Name:      "graph",
				Usage:     "Show the knowledge graph around a card",
				ArgsUsage: "<card-id>",
				Action:    graphCommand,
				Flags: []cli.Flag{
					dbFlag(),
					&cli.Float64Flag{
						Name:  "width",
						Usage: "Canvas width for node positions; 0 skips the layout",
					},
					&cli.Float64Flag{
						Name:  "height",
						Usage: "Canvas height for node positions",
						Value: 600,
					},
				},
			},
			{
				Name:      "connections",
				Usage:     "Show how two cards are connected",
				ArgsUsage: "<card-id> <card-id>",
				Action:    connectionsCommand,
				Flags:     []cli.Flag{dbFlag()},
			},
			{
				Name:   "models",
				Usage:  "List the model catalog",
				Action: modelsCommand,
			},
			{
				Name:  "cards",
				Usage: "Manage stored cards",
				Subcommands: []*cli.Command{
					{
						Name:   "list",
						Usage:  "List cards, newest first",
						Action: listCardsCommand,
						Flags: []cli.Flag{
							dbFlag(),
							&cli.StringFlag{
								Name:  "tag",
								Usage: "Only list cards with this tag",
							},
						},
					},
					{
						Name:      "add",
						Usage:     "Store a card",
						ArgsUsage: "[content]",
						Action:    addCardCommand,
						Flags: append(inputFlags(),
							dbFlag(),
							&cli.StringFlag{
								Name:  "title",
								Usage: "Card title; generated when empty and --enrich is set",
							},
							&cli.StringFlag{
								Name:  "type",
								Usage: "Card type (url, search, pdf, note, audio)",
								Value: "note",
							},
							&cli.StringFlag{
								Name:  "source",
								Usage: "Where the content came from",
							},
							&cli.StringSliceFlag{
								Name:  "tag",
								Usage: "Tag to attach; may be repeated",
							},
							&cli.BoolFlag{
								Name:  "enrich",
								Usage: "Generate the summary, and the title and tags when missing",
							},
						),
					},
					{
						Name:   "resummarize",
						Usage:  "Regenerate the summaries of stored cards",
						Action: resummarizeCommand,
						Flags: []cli.Flag{
							dbFlag(),
							&cli.StringFlag{
								Name:    "type",
								Aliases: []string{"t"},
								Usage:   "Summary type (concise, detailed, bullets, qa, key_facts)",
								Value:   "concise",
							},
							&cli.StringFlag{
								Name:  "language",
								Usage: "Output language",
								Value: "en",
							},
							&cli.StringFlag{
								Name:    "model",
								Aliases: []string{"m"},
								Usage:   "Catalog model ID; chosen automatically when empty",
							},
							&cli.IntFlag{
								Name:  "batch-size",
								Usage: "Number of cards written back per update",
								Value: 20,
							},
							&cli.IntFlag{
								Name:  "report-interval",
								Usage: "Report progress every N cards",
								Value: 10,
							},
							&cli.BoolFlag{
								Name:  "missing-only",
								Usage: "Skip cards that already have a summary",
							},
						},
					},
					{
						Name:      "delete",
						Usage:     "Delete cards",
						ArgsUsage: "<card-id>...",
						Action:    deleteCardsCommand,
						Flags:     []cli.Flag{dbFlag()},
					},
				},
			},
		},
	}
}

func inputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "file",
			Aliases: []string{"f"},
			Usage:   "Read the text from a file",
		},
		&cli.StringFlag{
			Name:  "language",
			Usage: "Output language",
			Value: "en",
		},
		&cli.StringFlag{
			Name:    "model",
			Aliases: []string{"m"},
			Usage:   "Catalog model ID; chosen automatically when empty",
		},
	}
}

func mediaFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "language",
			Usage: "Language of the media",
			Value: "en",
		},
		&cli.StringFlag{
			Name:    "model",
			Aliases: []string{"m"},
			Usage:   "Catalog model ID; chosen automatically when empty",
		},
	}
}

func dbFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "db",
		Aliases:  []string{"d"},
		Usage:    "Path to BadgerDB database directory",
		Required: true,
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
