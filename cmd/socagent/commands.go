package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jimyoyo0329/socagent/ingest"
	"github.com/jimyoyo0329/socagent/internal/service/annotate"
	"github.com/jimyoyo0329/socagent/internal/service/lookup"
	"github.com/jimyoyo0329/socagent/matcher"
	"github.com/jimyoyo0329/socagent/record"
	"github.com/jimyoyo0329/socagent/router"
	"github.com/jimyoyo0329/socagent/server"
	httpserver "github.com/jimyoyo0329/socagent/server/http"
	"github.com/jimyoyo0329/socagent/synthesis"
)

type IngestCmd struct {
	File string `arg:"" help:"CSV file of alert rows with a header."`
}

func (c *IngestCmd) Run(g *Globals) error {
	table, err := readTable(c.File)
	if err != nil {
		return err
	}

	pipeline := ingest.New(g.NewEmbedder(), g.NewIndexStore(), g.NewRecordStore())

	count, err := pipeline.Run(context.Background(), table)
	if err != nil {
		return err
	}

	fmt.Printf("ingested %d rows from %s\n", count, c.File)
	return nil
}

type AnnotateCmd struct {
	File      string  `arg:"" help:"CSV file of alert rows with a header."`
	Out       string  `help:"Output CSV path for the annotated table." default:"generated_notes.csv"`
	TopK      int     `help:"Number of candidates to retrieve per row." default:"3"`
	Threshold float64 `help:"Minimum similarity for note generation." default:"0.5"`
	Debug     bool    `help:"Print per-row query text, similarity, and exemplar note."`
}

func (c *AnnotateCmd) Run(g *Globals) error {
	table, err := readTable(c.File)
	if err != nil {
		return err
	}

	ctx := context.Background()

	m := matcher.New(g.NewEmbedder(), g.NewIndexStore())
	synth := synthesis.New(g.NewGenerator())
	service := annotate.New(m, synth)

	results, err := service.Annotate(ctx, table, c.TopK, c.Threshold)
	if err != nil {
		return err
	}

	for i, res := range results {
		fmt.Printf("--- row %d ---\n%s\n", i+1, res.Note)
		if c.Debug {
			fmt.Printf("query text: %s\nsimilarity: %.4f\n", res.QueryText, res.Similarity)
			if len(res.ExemplarNote) > 0 {
				fmt.Printf("exemplar note: %s\n", res.ExemplarNote)
			}
		}
	}

	out, err := os.Create(c.Out)
	if err != nil {
		return err
	}
	defer out.Close()

	if err := record.WriteCSV(out, table); err != nil {
		return err
	}

	fmt.Printf("wrote annotated table to %s\n", c.Out)
	return nil
}

type AskCmd struct {
	Question string `arg:"" help:"Free-form question about prior alerts."`
	TopK     int    `help:"Number of documents for the vector fallback." default:"4"`
	Force    bool   `help:"Skip the needs-retrieval check."`
}

func (c *AskCmd) Run(g *Globals) error {
	ctx := context.Background()

	rt := router.New(
		g.NewGenerator(),
		g.NewRecordStore(),
		g.NewIndexStore(),
		g.NewEmbedder(),
		router.WithTopK(c.TopK),
	)

	if !c.Force {
		needed, err := rt.NeedsRetrieval(ctx, c.Question)
		if err != nil {
			return err
		}
		if !needed {
			fmt.Println("this question does not require looking up prior events")
			return nil
		}
	}

	summaries, err := rt.Answer(ctx, c.Question)
	if err != nil {
		return err
	}

	for i, summary := range summaries {
		if i > 0 {
			fmt.Println("\n---")
		}
		fmt.Println(summary)
	}

	return nil
}

type LookupCmd struct {
	Field string `arg:"" help:"Field to match exactly (alert.signature, domain, or src_ip)."`
	Value string `arg:"" help:"Value to match."`
	Limit int    `help:"Maximum number of events to return (0 = all)." default:"0"`
}

func (c *LookupCmd) Run(g *Globals) error {
	ctx := context.Background()

	service := lookup.New(g.NewIndexStore(), synthesis.New(g.NewGenerator()))

	hits, err := service.Lookup(ctx, c.Field, c.Value, c.Limit)
	if err != nil {
		return err
	}

	if len(hits) == 0 {
		fmt.Println("no matching events")
		return nil
	}

	fmt.Printf("found %d matching events\n", len(hits))
	for i, hit := range hits {
		fmt.Printf("--- event %d ---\n%s\n\n%s\n", i+1, hit.MetadataText, hit.Outline)
	}

	return nil
}

type ServeCmd struct {
	Address string `help:"Listen address for the HTTP API." default:":8080"`
}

func (c *ServeCmd) Run(g *Globals) error {
	e := g.NewEmbedder()
	gen := g.NewGenerator()
	index := g.NewIndexStore()
	records := g.NewRecordStore()

	synth := synthesis.New(gen)

	srv := httpserver.NewServer(
		router.New(gen, records, index, e),
		annotate.New(matcher.New(e, index), synth),
		lookup.New(index, synth),
		server.WithAddress(c.Address),
	)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Run()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-stop:
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(ctx)
	}
}

func readTable(path string) (*record.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return record.ReadCSV(f)
}
