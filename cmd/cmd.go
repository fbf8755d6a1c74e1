// Package cmd provides CLI command implementations for Smartie.
package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/madewith/smartie/internal/server"
	"github.com/madewith/smartie/mcp"
)

// Version is set at build time via ldflags.
var Version = "dev"

// ServeCmd starts the HTTP API server.
type ServeCmd struct {
	Watch bool `short:"w" help:"Watch the drop directory for page dumps"`
}

// Run executes the serve command.
func (c *ServeCmd) Run(cli *CLI) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}

	a, err := buildApp(ctx, cfg, true, true)
	if err != nil {
		return err
	}
	defer a.close()

	if c.Watch {
		if cfg.Watch.Directory == "" {
			return fmt.Errorf("watch enabled but no watch directory configured")
		}
		go func() {
			err := a.pipeline.Watch(ctx, cfg.Watch.Directory)
			if err != nil && err != context.Canceled {
				fmt.Fprintf(os.Stderr, "Watch error: %v\n", err)
			}
		}()
	}

	srv := server.NewServer(a.assistant, a.graph, a.store, a.scraper, a.pipeline, cfg, a.logger.Named("server"))

	go func() {
		<-osSignalChannel()
		fmt.Fprintln(os.Stderr, "\nShutting down...")
		_ = srv.Stop(context.Background())
		cancel()
	}()

	color.Green("Smartie listening on %s:%d", cfg.Server.Host, cfg.Server.Port)
	return srv.Start()
}

// ChatCmd runs an interactive chat session in the terminal.
type ChatCmd struct {
	Message string `arg:"" optional:"" help:"Single message; omit for interactive mode"`
}

// Run executes the chat command.
func (c *ChatCmd) Run(cli *CLI) error {
	ctx := context.Background()

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}

	a, err := buildApp(ctx, cfg, true, true)
	if err != nil {
		return err
	}
	defer a.close()

	if c.Message != "" {
		printResponse(a, ctx, c.Message)
		return nil
	}

	color.Cyan("Smartie chat (Ctrl+D to exit)")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		message := strings.TrimSpace(scanner.Text())
		if message == "" {
			continue
		}
		printResponse(a, ctx, message)
	}
	return scanner.Err()
}

func printResponse(a *app, ctx context.Context, message string) {
	resp := a.assistant.ProcessMessage(ctx, message)
	fmt.Println(resp.Text)
	if len(resp.References) > 0 {
		color.Blue("References:")
		for _, ref := range resp.References {
			fmt.Printf("  %s\n", ref)
		}
	}
}

// ScrapeCmd crawls a site and ingests the pages.
type ScrapeCmd struct {
	URL    string `arg:"" optional:"" help:"Start URL; defaults to the configured start URL"`
	Output string `short:"o" help:"Also write the scraped pages to this JSON file"`
}

// Run executes the scrape command.
func (c *ScrapeCmd) Run(cli *CLI) error {
	ctx := context.Background()

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}

	startURL := c.URL
	if startURL == "" {
		startURL = cfg.Scraper.StartURL
	}
	if startURL == "" {
		return fmt.Errorf("no start URL given and none configured")
	}

	a, err := buildApp(ctx, cfg, true, false)
	if err != nil {
		return err
	}
	defer a.close()

	color.Green("Crawling %s", startURL)
	pages, err := a.scraper.Crawl(ctx, startURL)
	if err != nil && len(pages) == 0 {
		return fmt.Errorf("crawling: %w", err)
	}

	if c.Output != "" {
		data, err := json.MarshalIndent(pages, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling pages: %w", err)
		}
		if err := os.WriteFile(c.Output, data, 0o644); err != nil {
			return fmt.Errorf("writing %s: %w", c.Output, err)
		}
	}

	res, err := a.pipeline.Apply(ctx, pages)
	if err != nil {
		return fmt.Errorf("ingesting: %w", err)
	}

	color.Green("\n✓ Scrape complete")
	fmt.Printf("  Pages:          %d\n", len(pages))
	fmt.Printf("  Documents:      %d\n", res.DocumentsAdded)
	fmt.Printf("  Graph entities: %d\n", res.GraphCreated)
	return nil
}

// IngestCmd ingests a JSON page dump file.
type IngestCmd struct {
	Path string `arg:"" help:"Path to a JSON page dump"`
}

// Run executes the ingest command.
func (c *IngestCmd) Run(cli *CLI) error {
	ctx := context.Background()

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}

	a, err := buildApp(ctx, cfg, true, false)
	if err != nil {
		return err
	}
	defer a.close()

	res, err := a.pipeline.ApplyFile(ctx, c.Path)
	if err != nil {
		return err
	}

	color.Green("✓ Ingested %s", c.Path)
	fmt.Printf("  Documents:      %d\n", res.DocumentsAdded)
	fmt.Printf("  Graph entities: %d\n", res.GraphCreated)
	return nil
}

// GraphCmd shows knowledge graph statistics.
type GraphCmd struct {
	JSON bool `help:"Output as JSON"`
}

// Run executes the graph command.
func (c *GraphCmd) Run(cli *CLI) error {
	ctx := context.Background()

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}

	a, err := buildApp(ctx, cfg, true, false)
	if err != nil {
		return err
	}
	defer a.close()

	stats := a.graph.Stats()
	if c.JSON {
		data, _ := json.MarshalIndent(stats, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Println("Knowledge graph:")
	fmt.Printf("  Nodes:          %d\n", stats.NodeCount)
	fmt.Printf("  Relationships:  %d\n", stats.RelationshipCount)
	if len(stats.NodeTypes) > 0 {
		fmt.Println("  Node types:")
		for typ, count := range stats.NodeTypes {
			fmt.Printf("    %-12s %d\n", typ, count)
		}
	}
	if len(stats.RelationshipTypes) > 0 {
		fmt.Println("  Relationship types:")
		for typ, count := range stats.RelationshipTypes {
			fmt.Printf("    %-12s %d\n", typ, count)
		}
	}
	return nil
}

// MCPCmd starts the MCP server on stdio.
type MCPCmd struct{}

// Run executes the mcp command.
func (c *MCPCmd) Run(cli *CLI) error {
	ctx := context.Background()

	cfg, err := loadConfig(cli.Config)
	if err != nil {
		return err
	}

	a, err := buildApp(ctx, cfg, true, true)
	if err != nil {
		return err
	}
	defer a.close()

	srv := mcp.NewServer(a.assistant, a.graph, a.store)

	// Note: No output to stdout besides JSON-RPC - MCP uses stdio transport
	return srv.Run(ctx, os.Stdin, os.Stdout)
}

// VersionCmd prints the version.
type VersionCmd struct{}

// Run executes the version command.
func (c *VersionCmd) Run() error {
	fmt.Printf("smartie %s\n", Version)
	return nil
}

// osSignalChannel returns a channel that receives OS signals for graceful shutdown.
func osSignalChannel() <-chan os.Signal {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	return sigChan
}

// CLI is the root Kong command structure.
type CLI struct {
	Config string `short:"c" help:"Path to YAML config file"`

	// Commands
	Serve   ServeCmd   `cmd:"" help:"Start the HTTP API server"`
	Chat    ChatCmd    `cmd:"" help:"Chat with Smartie in the terminal"`
	Scrape  ScrapeCmd  `cmd:"" help:"Crawl a site and ingest the pages"`
	Ingest  IngestCmd  `cmd:"" help:"Ingest a JSON page dump"`
	Graph   GraphCmd   `cmd:"" help:"Show knowledge graph statistics"`
	MCP     MCPCmd     `cmd:"" help:"Start MCP server (stdio transport)"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// NewCLI creates a new CLI instance.
func NewCLI() *CLI {
	return &CLI{}
}

// Execute parses command-line arguments and executes the selected command.
func (c *CLI) Execute(args []string) error {
	parser, err := kong.New(c,
		kong.Name("smartie"),
		kong.Description("Retrieval-augmented assistant for the MadeWithNestlé site"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version": Version,
		},
	)
	if err != nil {
		return err
	}

	kongCtx, err := parser.Parse(args)
	if err != nil {
		return err
	}
	return kongCtx.Run(c)
}
