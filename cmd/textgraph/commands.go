package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/OFFIS-RIT/textgraph/internal/pipeline"
	"github.com/OFFIS-RIT/textgraph/internal/server"
	"github.com/OFFIS-RIT/textgraph/internal/setup"
	"github.com/OFFIS-RIT/textgraph/pkg/loader"
	iol "github.com/OFFIS-RIT/textgraph/pkg/loader/io"
	graphstorage "github.com/OFFIS-RIT/textgraph/pkg/store/pgx"

	"github.com/spf13/cobra"
)

var (
	genText     string
	genURL      string
	genKey      string
	genName     string
	genStore    bool
	genJSON     bool
	outputDir   string
	timeoutFlag time.Duration
)

var rootCmd = &cobra.Command{
	Use:   "textgraph",
	Short: "Turn text into a knowledge graph",
	Long: `Extracts entities and relationships from text with an LLM, renders them
as an interactive HTML graph and optionally stores them in Neo4j or PostgreSQL.

Configuration is read from the environment and an optional .env file.`,
	SilenceUsage: true,
}

var generateCmd = &cobra.Command{
	Use:   "generate [FILE]",
	Short: "Generate a graph from a text file, inline text, a URL or an S3 key",
	Long: `Generate a knowledge graph from one document and write knowledge_graph.html.

Examples:
  textgraph generate notes.txt --store
  textgraph generate --text "Marie Curie discovered radium."
  textgraph generate --url https://en.wikipedia.org/wiki/Marie_Curie --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

var accumulatedCmd = &cobra.Command{
	Use:   "accumulated",
	Short: "Render everything in the graph store",
	Long:  `Reads all stored entities and relationships and writes accumulated_knowledge_graph.html.`,
	Args:  cobra.NoArgs,
	RunE:  runAccumulated,
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the PostgreSQL graph store migrations",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := setup.ConfigFromEnv()
		if cfg.DatabaseURL == "" {
			return errors.New("DATABASE_URL is not set")
		}
		return graphstorage.Migrate(cfg.DatabaseURL)
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web UI and API",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		server.Init()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output-dir", "o", "", "directory for rendered pages (default $OUTPUT_DIR)")
	rootCmd.PersistentFlags().DurationVar(&timeoutFlag, "timeout", 10*time.Minute, "overall timeout")
	rootCmd.PersistentFlags().BoolVar(&genJSON, "json", false, "print the result as JSON")

	generateCmd.Flags().StringVar(&genText, "text", "", "inline text")
	generateCmd.Flags().StringVar(&genURL, "url", "", "web page to fetch")
	generateCmd.Flags().StringVar(&genKey, "key", "", "S3 object key in $AWS_BUCKET")
	generateCmd.Flags().StringVar(&genName, "name", "", "document name stored with the nodes")
	generateCmd.Flags().BoolVar(&genStore, "store", false, "save the graph to the configured store")
	generateCmd.MarkFlagsMutuallyExclusive("text", "url", "key")

	rootCmd.AddCommand(generateCmd, accumulatedCmd, migrateCmd, serveCmd)
}

func newApp(ctx context.Context) (*setup.App, error) {
	cfg := setup.ConfigFromEnv()
	if outputDir != "" {
		cfg.OutputDir = outputDir
	}
	return setup.NewApp(ctx, cfg)
}

func runGenerate(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutFlag)
	defer cancel()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	var doc loader.Document
	if len(args) == 1 {
		if genText != "" || genURL != "" || genKey != "" {
			return errors.New("pass either a file or one of --text, --url, --key")
		}
		name := genName
		if name == "" {
			name = filepath.Base(args[0])
		}
		doc = loader.NewDocument(loader.NewDocumentParams{
			Name:   name,
			Path:   args[0],
			Kind:   loader.DocumentKindFile,
			Loader: iol.NewIOTextLoader(),
		})
	} else {
		if genText == "" && genURL == "" && genKey == "" {
			return errors.New("nothing to do: pass a file, --text, --url or --key")
		}
		doc, err = app.Document(genName, genText, genURL, genKey)
		if err != nil {
			return err
		}
	}

	out, err := app.Pipeline.Generate(ctx, pipeline.GenerateRequest{Document: doc, Store: genStore})
	if err != nil {
		return err
	}

	if genJSON {
		return printJSON(cmd.OutOrStdout(), out)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Generated %d nodes and %d relationships from %q (%d chunks)\n",
		len(out.Graph.Nodes), len(out.Graph.Relationships), out.DocumentName, out.Chunks)
	if out.Stored != nil {
		fmt.Fprintf(w, "Stored %d nodes and %d relationships\n", out.Stored.NodesSaved, out.Stored.RelationshipsSaved)
	}
	for _, n := range out.Notices {
		fmt.Fprintf(w, "Notice: %s\n", n)
	}
	fmt.Fprintf(w, "Graph written to %s\n", out.HTMLPath)
	return nil
}

func runAccumulated(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), timeoutFlag)
	defer cancel()

	app, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close(context.Background())

	out, err := app.Pipeline.Accumulated(ctx)
	if err != nil {
		return err
	}

	if genJSON {
		return printJSON(cmd.OutOrStdout(), out)
	}
	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Accumulated graph has %d nodes and %d relationships\n", len(out.Graph.Nodes), len(out.Graph.Relationships))
	for _, n := range out.Notices {
		fmt.Fprintf(w, "Notice: %s\n", n)
	}
	fmt.Fprintf(w, "Graph written to %s\n", out.HTMLPath)
	return nil
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
