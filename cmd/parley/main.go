// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/poiesic/parley"
	"github.com/poiesic/parley/ai"
	"github.com/poiesic/parley/core"
	"github.com/poiesic/parley/corpus"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "parley",
		Usage: "Conversational retrieval-augmented answering over document corpora",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Build a corpus index from documents",
				Action: ingestCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:     "data",
						Aliases:  []string{"p"},
						Usage:    "Data path: directory, identifier list file, or URL",
						Required: true,
					},
				),
			},
			{
				Name:   "query",
				Usage:  "Run a similarity query against a corpus",
				Action: queryCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:     "text",
						Aliases:  []string{"q"},
						Usage:    "Query text",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "top-k",
						Usage: "Number of results to return",
						Value: corpus.DefaultQueryK,
					},
					&cli.StringFlag{
						Name:  "mode",
						Usage: "Query mode (similarity, score, mmr)",
						Value: "score",
					},
				),
			},
			{
				Name:   "clear",
				Usage:  "Delete a corpus index",
				Action: clearCommand,
				Flags:  commonFlags(),
			},
			{
				Name:   "chat",
				Usage:  "Interactive chat over a corpus",
				Action: chatCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:  "session",
						Usage: "Session id to resume (defaults to a fresh one)",
					},
					&cli.StringFlag{
						Name:  "lang",
						Usage: "Conversation language tag",
						Value: "en",
					},
					&cli.BoolFlag{
						Name:  "free-chat",
						Usage: "Answer from general knowledge instead of the corpus",
					},
				),
			},
			{
				Name:   "clear-session",
				Usage:  "Drop a chat session's history",
				Action: clearSessionCommand,
				Flags: append(commonFlags(),
					&cli.StringFlag{
						Name:     "session",
						Usage:    "Session id to drop",
						Required: true,
					},
				),
			},
			{
				Name:   "status",
				Usage:  "Report inference service readiness",
				Action: statusCommand,
				Flags:  commonFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func commonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "base",
			Aliases: []string{"b"},
			Usage:   "Base directory holding the corpus indexes",
			Value:   "./corpora",
		},
		&cli.StringFlag{
			Name:    "corpus",
			Aliases: []string{"c"},
			Usage:   "Corpus id",
			Value:   "default",
		},
		&cli.StringFlag{
			Name:  "generator-host",
			Usage: "Generation service host URL",
		},
		&cli.StringFlag{
			Name:  "generator-model",
			Usage: "Generation model name",
		},
		&cli.StringFlag{
			Name:  "embedding-host",
			Usage: "Embedding service host URL",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
		},
		&cli.StringFlag{
			Name:  "translator-url",
			Usage: "Translation service endpoint",
		},
		&cli.StringFlag{
			Name:  "transcriber-url",
			Usage: "Speech recognition service endpoint",
		},
		&cli.StringFlag{
			Name:  "synthesizer-url",
			Usage: "Speech synthesis service endpoint",
		},
		&cli.StringFlag{
			Name:  "status-url",
			Usage: "Consolidated status endpoint",
		},
		&cli.DurationFlag{
			Name:  "request-timeout",
			Usage: "Timeout for inference service requests",
			Value: 120 * time.Second,
		},
	}
}

func openApp(ctx context.Context, c *cli.Context) (*parley.App, error) {
	var configOpts []ai.ConfigOption
	if v := c.String("generator-host"); v != "" {
		configOpts = append(configOpts, ai.WithGeneratorHost(v))
	}
	if v := c.String("generator-model"); v != "" {
		configOpts = append(configOpts, ai.WithGeneratorModel(v))
	}
	if v := c.String("embedding-host"); v != "" {
		configOpts = append(configOpts, ai.WithEmbeddingHost(v))
	}
	if v := c.String("embedding-model"); v != "" {
		configOpts = append(configOpts, ai.WithEmbeddingModel(v))
	}
	if v := c.String("translator-url"); v != "" {
		configOpts = append(configOpts, ai.WithTranslatorURL(v))
	}
	if v := c.String("transcriber-url"); v != "" {
		configOpts = append(configOpts, ai.WithTranscriberURL(v))
	}
	if v := c.String("synthesizer-url"); v != "" {
		configOpts = append(configOpts, ai.WithSynthesizerURL(v))
	}
	if v := c.String("status-url"); v != "" {
		configOpts = append(configOpts, ai.WithStatusURL(v))
	}
	configOpts = append(configOpts, ai.WithRequestTimeout(c.Duration("request-timeout")))

	return parley.Open(ctx, c.String("base"),
		parley.WithAIConfig(ai.NewConfig(configOpts...)),
		parley.WithDefaultCorpus(c.String("corpus")))
}

func ingestCommand(c *cli.Context) error {
	ctx := context.Background()

	app, err := openApp(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to open service: %w", err)
	}
	defer app.Close()

	corpusID := c.String("corpus")
	dataPath := c.String("data")

	fmt.Fprintf(os.Stderr, "Ingesting %s into corpus %s\n", dataPath, corpusID)
	started := time.Now()

	if err := app.IngestCorpus(ctx, corpusID, dataPath); err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Done in %s\n", time.Since(started).Round(time.Millisecond))
	return nil
}

func queryCommand(c *cli.Context) error {
	ctx := context.Background()

	app, err := openApp(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to open service: %w", err)
	}
	defer app.Close()

	var mode corpus.QueryMode
	switch c.String("mode") {
	case "similarity":
		mode = corpus.ModeSimilarity
	case "score":
		mode = corpus.ModeSimilarityScore
	case "mmr":
		mode = corpus.ModeMMR
	default:
		return fmt.Errorf("invalid mode %q: must be one of similarity, score, mmr", c.String("mode"))
	}

	matches, err := app.QueryCorpus(ctx, c.String("corpus"), c.String("text"), c.Int("top-k"), mode)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if len(matches) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	for i, m := range matches {
		if mode == corpus.ModeSimilarity {
			fmt.Printf("%d. [%s]\n%s\n\n", i+1, m.Source, m.Text)
		} else {
			fmt.Printf("%d. [%s] score=%.4f\n%s\n\n", i+1, m.Source, m.Score, m.Text)
		}
	}
	return nil
}

func clearCommand(c *cli.Context) error {
	ctx := context.Background()

	app, err := openApp(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to open service: %w", err)
	}
	defer app.Close()

	corpusID := c.String("corpus")
	if err := app.ClearCorpus(ctx, corpusID); err != nil {
		return fmt.Errorf("clear failed: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Cleared corpus %s\n", corpusID)
	return nil
}

func chatCommand(c *cli.Context) error {
	ctx := context.Background()

	app, err := openApp(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to open service: %w", err)
	}
	defer app.Close()

	sessionID := c.String("session")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	boldGreen := color.New(color.FgGreen, color.Bold).SprintFunc()
	boldCyan := color.New(color.FgCyan, color.Bold).SprintFunc()
	dim := color.New(color.Faint).SprintFunc()

	fmt.Printf("Session: %s\n", boldCyan(sessionID))
	fmt.Printf("Corpus: %s\n", boldCyan(c.String("corpus")))
	fmt.Println("Type your question and press Enter. Type 'exit' or Ctrl-D to quit.")
	fmt.Println()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print(boldGreen("You: "))
		if !scanner.Scan() {
			break
		}

		question := strings.TrimSpace(scanner.Text())
		if question == "" {
			continue
		}
		if strings.EqualFold(question, "exit") {
			break
		}

		res := app.Chat(ctx, &core.ChatRequest{
			SessionID: sessionID,
			Question:  question,
			SrcLang:   c.String("lang"),
			CorpusID:  c.String("corpus"),
			FreeChat:  c.Bool("free-chat"),
		})

		if !res.Success {
			fmt.Fprintf(os.Stderr, "Error: %v\n", res.Err)
			continue
		}

		fmt.Printf("%s%s\n", boldCyan("Assistant: "), res.Answer)
		fmt.Println(dim(fmt.Sprintf("(%s)", res.Elapsed.Round(time.Millisecond))))
		fmt.Println()
	}
	return scanner.Err()
}

func clearSessionCommand(c *cli.Context) error {
	ctx := context.Background()

	app, err := openApp(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to open service: %w", err)
	}
	defer app.Close()

	sessionID := c.String("session")
	if app.ClearSession(sessionID) {
		fmt.Fprintf(os.Stderr, "Dropped session %s\n", sessionID)
	} else {
		fmt.Fprintf(os.Stderr, "No such session %s\n", sessionID)
	}
	return nil
}

func statusCommand(c *cli.Context) error {
	ctx := context.Background()

	app, err := openApp(ctx, c)
	if err != nil {
		return fmt.Errorf("failed to open service: %w", err)
	}
	defer app.Close()

	status := app.Status(ctx)

	report := func(name string, up bool) {
		state := color.RedString("down")
		if up {
			state = color.GreenString("up")
		}
		fmt.Printf("%-12s %s\n", name, state)
	}

	report("generator", status.Generator)
	report("translator", status.Translator)
	report("embedder", status.Embedder)
	report("transcriber", status.Transcriber)
	report("synthesizer", status.Synthesizer)
	return nil
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
