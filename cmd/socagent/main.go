package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"

	"github.com/jimyoyo0329/socagent/embedder"
	googleembedder "github.com/jimyoyo0329/socagent/embedder/google"
	openaiembedder "github.com/jimyoyo0329/socagent/embedder/openai"
	"github.com/jimyoyo0329/socagent/generator"
	anthropicgenerator "github.com/jimyoyo0329/socagent/generator/anthropic"
	googlegenerator "github.com/jimyoyo0329/socagent/generator/google"
	openaigenerator "github.com/jimyoyo0329/socagent/generator/openai"
	"github.com/jimyoyo0329/socagent/indexstore"
	memoryindex "github.com/jimyoyo0329/socagent/indexstore/memory"
	postgresindex "github.com/jimyoyo0329/socagent/indexstore/postgres"
	qdrantindex "github.com/jimyoyo0329/socagent/indexstore/qdrant"
	"github.com/jimyoyo0329/socagent/recordstore"
	postgresrecords "github.com/jimyoyo0329/socagent/recordstore/postgres"
	sqliterecords "github.com/jimyoyo0329/socagent/recordstore/sqlite"
)

type Globals struct {
	// Embedder config
	Embedder      string `help:"Embedding provider (openai or google)" default:"openai"`
	EmbedderKey   string `help:"API key for the embedder" env:"EMBEDDER_API_KEY" default:""`
	EmbedderModel string `help:"Model identifier for the embedder" default:"text-embedding-3-small"`

	// Generator config
	Generator      string `help:"Generation provider (openai, anthropic, or google)" default:"openai"`
	GeneratorKey   string `help:"API key for the generator" env:"GENERATOR_API_KEY" default:""`
	GeneratorModel string `help:"Model identifier for the generator" default:"gpt-4o"`

	// Vector index config
	Index         string `help:"Index store provider (memory, qdrant, or postgres)" default:"qdrant"`
	IndexLocation string `help:"Address of the index store" default:"http://localhost:6333"`
	Collection    string `help:"Index collection name" default:"alerts"`

	// Record store config
	Records         string `help:"Record store provider (sqlite or postgres)" default:"sqlite"`
	RecordsLocation string `help:"Location of the record store" default:"soc.db"`
	Table           string `help:"Record table name" default:"soc_data"`
}

func (g *Globals) NewEmbedder() embedder.Embedder {
	opts := []embedder.Option{
		embedder.WithApiKey(g.EmbedderKey),
		embedder.WithModel(g.EmbedderModel),
	}

	switch strings.ToLower(g.Embedder) {
	case "google":
		return googleembedder.NewEmbedder(opts...)
	default:
		return openaiembedder.NewEmbedder(opts...)
	}
}

func (g *Globals) NewGenerator() generator.Generator {
	opts := []generator.Option{
		generator.WithApiKey(g.GeneratorKey),
		generator.WithModel(g.GeneratorModel),
	}

	switch strings.ToLower(g.Generator) {
	case "anthropic":
		return anthropicgenerator.NewGenerator(opts...)
	case "google":
		return googlegenerator.NewGenerator(opts...)
	default:
		return openaigenerator.NewGenerator(opts...)
	}
}

func (g *Globals) NewIndexStore() indexstore.IndexStore {
	opts := []indexstore.Option{
		indexstore.WithLocation(g.IndexLocation),
		indexstore.WithCollection(g.Collection),
	}

	switch strings.ToLower(g.Index) {
	case "memory":
		return memoryindex.NewStore(opts...)
	case "postgres":
		return postgresindex.NewStore(opts...)
	default:
		return qdrantindex.NewStore(opts...)
	}
}

func (g *Globals) NewRecordStore() recordstore.RecordStore {
	opts := []recordstore.Option{
		recordstore.WithLocation(g.RecordsLocation),
		recordstore.WithTable(g.Table),
	}

	switch strings.ToLower(g.Records) {
	case "postgres":
		return postgresrecords.NewStore(opts...)
	default:
		return sqliterecords.NewStore(opts...)
	}
}

var cli struct {
	Globals

	Ingest   IngestCmd   `cmd:"" help:"Load an alert CSV into the vector index and the record store."`
	Annotate AnnotateCmd `cmd:"" help:"Generate a note for every row of an alert CSV."`
	Ask      AskCmd      `cmd:"" help:"Answer a free-form question about prior alerts."`
	Lookup   LookupCmd   `cmd:"" help:"List prior events matching a field exactly."`
	Serve    ServeCmd    `cmd:"" help:"Run the HTTP API."`
}

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: could not load .env: %v\n", err)
	}

	ctx := kong.Parse(&cli)
	err := ctx.Run(&cli.Globals)
	ctx.FatalIfErrorf(err)
}
