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
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/poiesic/grag"
	"github.com/poiesic/grag/core"
	"github.com/poiesic/grag/reembed"
	"github.com/poiesic/grag/search"
	"github.com/urfave/cli/v2"
)

func formatFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:    "format",
		Aliases: []string{"f"},
		Usage:   "Output format (text, json, yaml)",
		Value:   formatText,
	}
}

func topKFlag() *cli.IntFlag {
	return &cli.IntFlag{
		Name:    "top-k",
		Aliases: []string{"k"},
		Usage:   "Maximum number of results (defaults to search.top_k)",
	}
}

func thresholdFlag() *cli.Float64Flag {
	return &cli.Float64Flag{
		Name:  "threshold",
		Usage: "Minimum fused score of a result (defaults to search.threshold)",
	}
}

// searchParams resolves --top-k and --threshold against the configuration.
func searchParams(c *cli.Context) (int, float64) {
	cfg := appConfig(c)
	topK, threshold := cfg.Search.TopK, cfg.Search.Threshold
	if c.IsSet("top-k") {
		topK = c.Int("top-k")
	}
	if c.IsSet("threshold") {
		threshold = c.Float64("threshold")
	}
	return topK, threshold
}

// withManager opens the database and a search manager for the duration of fn.
func withManager(c *cli.Context, fn func(ctx context.Context, db *grag.Database, m *search.Manager) error) error {
	cfg := appConfig(c)
	retrievalConfig, err := cfg.RetrievalConfig()
	if err != nil {
		return err
	}

	concurrency := cfg.Search.Concurrency
	if c.IsSet("workers") {
		concurrency = c.Int("workers")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	manager, err := db.NewSearchManager(retrievalConfig, search.WithConcurrency(concurrency))
	if err != nil {
		return err
	}
	defer manager.Close()

	return fn(c.Context, db, manager)
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:   "import",
		Usage:  "Import exported documents from a JSON array or JSON Lines file",
		Action: importAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "Path to the export file",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  "embed",
				Usage: "Embed documents that carry no embedding",
			},
		},
	}
}

func importAction(c *cli.Context) error {
	f, err := os.Open(c.String("file"))
	if err != nil {
		return err
	}
	defer f.Close()

	records, err := readRecords(f)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", c.String("file"), err)
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	var added []*core.Document
	var skipped int
	if c.Bool("embed") {
		pipeline, err := db.NewIngestionPipeline()
		if err != nil {
			return err
		}
		added, skipped, err = pipeline.IngestRecords(c.Context, records)
		// Release waits for the embedding workers before the store closes.
		pipeline.Release()
		if err != nil {
			return err
		}
	} else {
		docs := make([]*core.Document, 0, len(records))
		for i, rec := range records {
			doc, err := core.DocumentFromRecord(rec)
			if err != nil {
				slog.Warn("skipping invalid record", "record", i, "err", err)
				skipped++
				continue
			}
			docs = append(docs, doc)
		}
		if len(docs) > 0 {
			added, err = db.DocumentRepository().AddDocuments(c.Context, docs...)
			if err != nil {
				return err
			}
		}
	}

	fmt.Fprintf(c.App.Writer, "Imported %d documents (%d skipped)\n", len(added), skipped)
	return nil
}

// readRecords decodes either a JSON array of objects or a stream of objects.
func readRecords(r io.Reader) ([]map[string]any, error) {
	br := bufio.NewReader(r)
	for {
		b, err := br.Peek(1)
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, err
		}
		if !bytes.ContainsAny(b, " \t\r\n") {
			break
		}
		br.ReadByte()
	}

	dec := json.NewDecoder(br)
	dec.UseNumber()

	first, _ := br.Peek(1)
	if first[0] == '[' {
		var records []map[string]any
		if err := dec.Decode(&records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var records []map[string]any
	for {
		var rec map[string]any
		err := dec.Decode(&rec)
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
}

func embedCommand() *cli.Command {
	return &cli.Command{
		Name:   "embed",
		Usage:  "Embed stored documents (only those without an embedding unless --all)",
		Action: embedAction,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "all",
				Usage: "Re-embed every document, replacing existing embeddings",
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Number of documents to process in each batch (defaults to embed.batch_size)",
			},
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of batches embedded concurrently (defaults to embed.workers)",
			},
			&cli.IntFlag{
				Name:  "max-retries",
				Usage: "Maximum attempts per batch (defaults to embed.max_retries)",
			},
			durationFlag("retry-delay", "Base delay for exponential backoff (defaults to embed.retry_delay)", 0),
		},
	}
}

func embedAction(c *cli.Context) error {
	cfg := appConfig(c)
	embedConfig := &reembed.Config{
		BatchSize:      cfg.Embed.BatchSize,
		ReportInterval: cfg.Embed.BatchSize,
		MaxRetries:     cfg.Embed.MaxRetries,
		RetryDelay:     cfg.Embed.RetryDelay,
		Workers:        cfg.Embed.Workers,
		MissingOnly:    !c.Bool("all"),
	}
	if c.IsSet("batch-size") {
		embedConfig.BatchSize = c.Int("batch-size")
		embedConfig.ReportInterval = embedConfig.BatchSize
	}
	if c.IsSet("workers") {
		embedConfig.Workers = c.Int("workers")
	}
	if c.IsSet("max-retries") {
		embedConfig.MaxRetries = c.Int("max-retries")
	}
	if c.IsSet("retry-delay") {
		embedConfig.RetryDelay = c.Duration("retry-delay")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	reembedder, err := db.NewReembedder(embedConfig, c.App.ErrWriter)
	if err != nil {
		return err
	}

	fmt.Fprintf(c.App.ErrWriter, "Database: %s\n", cfg.Database.Path)
	fmt.Fprintf(c.App.ErrWriter, "Embedding host: %s\n", cfg.Embedding.Host)
	fmt.Fprintf(c.App.ErrWriter, "Embedding model: %s\n", cfg.Embedding.Model)
	fmt.Fprintln(c.App.ErrWriter)

	summary, err := reembedder.Run(c.Context)
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Embedded %d documents (%d without text)\n", summary.Embedded, summary.Skipped)
	return nil
}

func searchCommand() *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Run a graph-aware search",
		ArgsUsage: "[query words]",
		Action:    searchAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Query text (or pass it as arguments)",
			},
			topKFlag(),
			thresholdFlag(),
			&cli.BoolFlag{
				Name:  "flat",
				Usage: "Use flat cosine search without graph expansion",
			},
			formatFlag(),
		},
	}
}

func searchAction(c *cli.Context) error {
	format := c.String("format")
	if err := validateFormat(format); err != nil {
		return err
	}

	query := c.String("query")
	if query == "" {
		query = strings.Join(c.Args().Slice(), " ")
	}
	if strings.TrimSpace(query) == "" {
		return fmt.Errorf("a query is required")
	}
	topK, threshold := searchParams(c)

	return withManager(c, func(ctx context.Context, _ *grag.Database, m *search.Manager) error {
		var results []*core.SearchResult
		var err error
		if c.Bool("flat") {
			results, err = m.FlatSearch(ctx, query, topK, threshold)
		} else {
			results, err = m.Search(ctx, query, topK, threshold)
		}
		if err != nil {
			return err
		}
		return writeResults(c.App.Writer, format, results)
	})
}

func batchCommand() *cli.Command {
	return &cli.Command{
		Name:   "batch",
		Usage:  "Run one search per line of a file",
		Action: batchAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "file",
				Usage:    "File with one query per line, optionally prefixed by an id and a tab",
				Required: true,
			},
			topKFlag(),
			thresholdFlag(),
			&cli.IntFlag{
				Name:  "workers",
				Usage: "Number of queries run concurrently (defaults to search.concurrency)",
			},
			&cli.BoolFlag{
				Name:  "record",
				Usage: "Store the result sets as answers instead of printing them",
			},
			&cli.StringFlag{
				Name:  "model",
				Usage: "Model name the answers are recorded under (defaults to embedding.model)",
			},
			&cli.StringFlag{
				Name:  "run-id",
				Usage: "Run identifier stored with the answers (generated when empty)",
			},
			formatFlag(),
		},
	}
}

// linesFromFile returns an iterator over lines in a file.
func linesFromFile(filename string) (iter.Seq[string], error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}

	return func(yield func(string) bool) {
		defer f.Close()
		scanner := bufio.NewScanner(f)
		for scanner.Scan() {
			if !yield(scanner.Text()) {
				return
			}
		}
	}, nil
}

// readQuestions parses "id<TAB>question" or bare question lines. Bare
// questions get a content-derived id so reruns skip them consistently.
func readQuestions(lines iter.Seq[string]) []search.Question {
	var questions []search.Question
	for line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if id, text, ok := strings.Cut(line, "\t"); ok && strings.TrimSpace(text) != "" {
			questions = append(questions, search.Question{ID: strings.TrimSpace(id), Text: strings.TrimSpace(text)})
			continue
		}
		questions = append(questions, search.Question{ID: core.IDFromContent(line).String(), Text: line})
	}
	return questions
}

// batchOutput is the structured rendering of one batch query.
type batchOutput struct {
	Query   string               `json:"query" yaml:"query"`
	Results []*core.SearchResult `json:"results" yaml:"results"`
	Error   string               `json:"error,omitempty" yaml:"error,omitempty"`
}

func batchAction(c *cli.Context) error {
	format := c.String("format")
	if err := validateFormat(format); err != nil {
		return err
	}

	lines, err := linesFromFile(c.String("file"))
	if err != nil {
		return err
	}
	questions := readQuestions(lines)
	if len(questions) == 0 {
		return fmt.Errorf("no queries in %s", c.String("file"))
	}
	topK, threshold := searchParams(c)

	return withManager(c, func(ctx context.Context, db *grag.Database, m *search.Manager) error {
		if c.Bool("record") {
			model := c.String("model")
			if model == "" {
				model = appConfig(c).Embedding.Model
			}
			summary, err := m.RecordBatch(ctx, db.AnswerRepository(), c.String("run-id"), model, questions, topK, threshold)
			if err != nil {
				return err
			}
			if format != formatText {
				return writeStructured(c.App.Writer, format, summary)
			}
			fmt.Fprintf(c.App.Writer, "Run %s: recorded %d, skipped %d, failed %d\n",
				summary.RunID, summary.Recorded, summary.Skipped, summary.Failed)
			return nil
		}

		queries := make([]string, len(questions))
		for i, q := range questions {
			queries[i] = q.Text
		}
		batch, err := m.BatchSearch(ctx, queries, topK, threshold)
		if err != nil {
			return err
		}

		if format != formatText {
			out := make([]batchOutput, len(batch))
			for i, item := range batch {
				out[i] = batchOutput{Query: item.Query, Results: item.Results}
				if item.Err != nil {
					out[i].Error = item.Err.Error()
				}
			}
			return writeStructured(c.App.Writer, format, out)
		}

		for _, item := range batch {
			fmt.Fprintf(c.App.Writer, "Query: %s\n", item.Query)
			if item.Err != nil {
				fmt.Fprintf(c.App.Writer, "  error: %v\n", item.Err)
				continue
			}
			if err := writeResults(c.App.Writer, format, item.Results); err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer)
		}
		return nil
	})
}

func similarCommand() *cli.Command {
	return &cli.Command{
		Name:   "similar",
		Usage:  "Find documents similar to a stored document",
		Action: similarAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "node",
				Aliases:  []string{"n"},
				Usage:    "External node id of the source document",
				Required: true,
			},
			topKFlag(),
			&cli.BoolFlag{
				Name:  "include-self",
				Usage: "Keep the source document in the results",
			},
			formatFlag(),
		},
	}
}

func similarAction(c *cli.Context) error {
	format := c.String("format")
	if err := validateFormat(format); err != nil {
		return err
	}
	topK, _ := searchParams(c)

	return withManager(c, func(ctx context.Context, _ *grag.Database, m *search.Manager) error {
		results, err := m.FindSimilar(ctx, c.String("node"), topK, !c.Bool("include-self"))
		if err != nil {
			return err
		}
		return writeResults(c.App.Writer, format, results)
	})
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:   "stats",
		Usage:  "Show document and index statistics",
		Action: statsAction,
		Flags:  []cli.Flag{formatFlag()},
	}
}

func statsAction(c *cli.Context) error {
	format := c.String("format")
	if err := validateFormat(format); err != nil {
		return err
	}

	return withManager(c, func(ctx context.Context, _ *grag.Database, m *search.Manager) error {
		stats, err := m.Stats(ctx)
		if err != nil {
			return err
		}
		if format != formatText {
			return writeStructured(c.App.Writer, format, stats)
		}

		w := c.App.Writer
		fmt.Fprintf(w, "Documents:        %d\n", stats.TotalDocuments)
		fmt.Fprintf(w, "Indexed:          %d\n", stats.IndexedDocuments)
		fmt.Fprintf(w, "Unindexed:        %d\n", stats.UnindexedDocuments)
		fmt.Fprintf(w, "Edges:            %d\n", stats.IndexedEdges)
		fmt.Fprintf(w, "Embedding model:  %s\n", stats.EmbeddingModel)
		fmt.Fprintf(w, "Embedding dim:    %d\n", stats.EmbeddingDim)
		if !stats.LastBuiltAt.IsZero() {
			fmt.Fprintf(w, "Index built at:   %s\n", stats.LastBuiltAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	})
}

func answersCommand() *cli.Command {
	return &cli.Command{
		Name:   "answers",
		Usage:  "Inspect recorded batch answers",
		Action: answersAction,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "model",
				Usage: "Show answers recorded for this model (lists models when empty)",
			},
			&cli.BoolFlag{
				Name:  "delete",
				Usage: "Delete the answers recorded for --model",
			},
			formatFlag(),
		},
	}
}

// answerRow is the listing form of a stored answer.
type answerRow struct {
	QuestionID string `json:"question_id" yaml:"question_id"`
	Question   string `json:"question" yaml:"question"`
	RunID      string `json:"run_id" yaml:"run_id"`
	Completed  bool   `json:"completed" yaml:"completed"`
	Results    int    `json:"results" yaml:"results"`
	TopNodeID  string `json:"top_nodeid,omitempty" yaml:"top_nodeid,omitempty"`
}

func answersAction(c *cli.Context) error {
	format := c.String("format")
	if err := validateFormat(format); err != nil {
		return err
	}
	model := c.String("model")
	if c.Bool("delete") && model == "" {
		return fmt.Errorf("--delete requires --model")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := c.Context
	answers := db.AnswerRepository()
	w := c.App.Writer

	switch {
	case c.Bool("delete"):
		n, err := answers.DeleteAnswers(ctx, model)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "Deleted %d answers for %s\n", n, model)
		return nil

	case model == "":
		stats, err := answers.ModelStats(ctx)
		if err != nil {
			return err
		}
		if format != formatText {
			return writeStructured(w, format, stats)
		}
		if len(stats) == 0 {
			fmt.Fprintln(w, "No answers recorded")
			return nil
		}
		models := make([]string, 0, len(stats))
		for m := range stats {
			models = append(models, m)
		}
		sort.Strings(models)
		for _, m := range models {
			fmt.Fprintf(w, "%-40s %d\n", m, stats[m])
		}
		return nil

	default:
		stored, err := answers.GetAnswers(ctx, model)
		if err != nil {
			return err
		}
		rows := make([]answerRow, len(stored))
		for i, a := range stored {
			rows[i] = answerRow{
				QuestionID: a.QuestionID,
				Question:   a.Question,
				RunID:      a.RunID,
				Completed:  a.Completed,
				Results:    len(a.Results),
			}
			if len(a.Results) > 0 {
				rows[i].TopNodeID = a.Results[0].NodeID
			}
		}
		if format != formatText {
			return writeStructured(w, format, rows)
		}
		for _, row := range rows {
			status := "ok"
			if !row.Completed {
				status = "incomplete"
			}
			fmt.Fprintf(w, "%s\t%s\t%d results\t%s\t%s\n", row.QuestionID, status, row.Results, row.TopNodeID, row.Question)
		}
		return nil
	}
}
