// Package mcp provides the MCP (Model Context Protocol) server for Smartie.
package mcp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/madewith/smartie/internal/assistant"
	"github.com/madewith/smartie/internal/graph"
	"github.com/madewith/smartie/internal/vectorstore"
)

// Server represents the MCP server.
type Server struct {
	assistant *assistant.Assistant
	graph     *graph.KnowledgeGraph
	store     *vectorstore.Store
	server    *mcp.Server
}

// Tool represents an MCP tool.
type Tool struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
}

// Resource represents an MCP resource.
type Resource struct {
	URI         string
	Name        string
	Description string
	MimeType    string
}

// NewServer creates a new MCP server.
func NewServer(asst *assistant.Assistant, g *graph.KnowledgeGraph, store *vectorstore.Store) *Server {
	s := &Server{
		assistant: asst,
		graph:     g,
		store:     store,
	}

	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    "smartie",
		Version: "0.1.0",
	}, nil)

	return s
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []Tool {
	return []Tool{
		{
			Name:        "smartie_chat",
			Description: "Ask Smartie a question about Nestlé products, recipes, and nutrition. Returns the answer with source references.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"message": {Type: "string", Description: "The question to ask"},
				},
				Required: []string{"message"},
			},
		},
		{
			Name:        "smartie_search",
			Description: "Semantic search over scraped site pages. Returns ranked pages matching the query.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"query": {Type: "string", Description: "Search query text"},
					"limit": {Type: "integer", Description: "Maximum number of results"},
				},
				Required: []string{"query"},
			},
		},
		{
			Name:        "smartie_graph_query",
			Description: "Traverse the knowledge graph from a start node and return the surrounding subgraph.",
			InputSchema: &jsonschema.Schema{
				Type: "object",
				Properties: map[string]*jsonschema.Schema{
					"startNodeId": {Type: "string", Description: "ID of the node to start from"},
					"maxDepth":    {Type: "integer", Description: "Maximum traversal depth in edges"},
				},
				Required: []string{"startNodeId"},
			},
		},
		{
			Name:        "smartie_graph_stats",
			Description: "Summarize knowledge graph size with per-type node and relationship counts.",
			InputSchema: &jsonschema.Schema{
				Type:       "object",
				Properties: map[string]*jsonschema.Schema{},
			},
		},
	}
}

// ListResources returns all registered resources.
func (s *Server) ListResources() []Resource {
	return []Resource{
		{
			URI:         "smartie://overview",
			Name:        "Knowledge Base Overview",
			Description: "High-level statistics about the indexed site content",
			MimeType:    "text/plain",
		},
	}
}

// CallTool executes a tool with the given arguments.
func (s *Server) CallTool(ctx context.Context, name string, args map[string]any) (string, error) {
	switch name {
	case "smartie_chat":
		message, _ := args["message"].(string)
		return s.handleChat(ctx, message)
	case "smartie_search":
		query, _ := args["query"].(string)
		limit, _ := args["limit"].(float64)
		if limit == 0 {
			limit = 5
		}
		return s.handleSearch(ctx, query, int(limit))
	case "smartie_graph_query":
		startID, _ := args["startNodeId"].(string)
		depth, _ := args["maxDepth"].(float64)
		if depth == 0 {
			depth = 2
		}
		return s.handleGraphQuery(startID, int(depth))
	case "smartie_graph_stats":
		return s.handleGraphStats(), nil
	default:
		return "", fmt.Errorf("unknown tool: %s", name)
	}
}

// ReadResource reads a resource by URI.
func (s *Server) ReadResource(ctx context.Context, uri string) (string, error) {
	switch uri {
	case "smartie://overview":
		return s.overview(), nil
	default:
		return "", fmt.Errorf("unknown resource: %s", uri)
	}
}

// Tool handlers

func (s *Server) handleChat(ctx context.Context, message string) (string, error) {
	if message == "" {
		return "No message provided", nil
	}

	resp := s.assistant.ProcessMessage(ctx, message)

	var sb strings.Builder
	sb.WriteString(resp.Text)
	if len(resp.References) > 0 {
		sb.WriteString("\n\nReferences:\n")
		for _, ref := range resp.References {
			sb.WriteString(fmt.Sprintf("- %s\n", ref))
		}
	}
	return sb.String(), nil
}

func (s *Server) handleSearch(ctx context.Context, query string, limit int) (string, error) {
	if query == "" {
		return "No query provided", nil
	}

	results := s.store.Search(ctx, query, limit)
	if len(results) == 0 {
		return "No results found", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d results for '%s':\n\n", len(results), query))
	for i, r := range results {
		sb.WriteString(fmt.Sprintf("%d. **%s**\n", i+1, r.Title))
		sb.WriteString(fmt.Sprintf("   URL: %s\n", r.URL))
		sb.WriteString(fmt.Sprintf("   Score: %.3f\n", r.Score))
		snippet := r.Content
		if len(snippet) > 200 {
			snippet = snippet[:200] + "..."
		}
		if snippet != "" {
			sb.WriteString(fmt.Sprintf("   %s\n", snippet))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("Next: Use `smartie_chat` to get a full answer grounded in these pages.")
	return sb.String(), nil
}

func (s *Server) handleGraphQuery(startID string, depth int) (string, error) {
	if startID == "" {
		return "No start node provided", nil
	}

	sub := s.graph.Query(startID, depth)
	if len(sub.Nodes) == 0 {
		return fmt.Sprintf("Node '%s' not found in the knowledge graph.", startID), nil
	}

	byID := make(map[string]*graph.GraphNode, len(sub.Nodes))
	for _, node := range sub.Nodes {
		byID[node.ID] = node
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Subgraph from '%s' (depth %d): %d nodes, %d relationships\n\nNodes:\n",
		startID, depth, len(sub.Nodes), len(sub.Relationships)))
	nodes := make([]*graph.GraphNode, len(sub.Nodes))
	copy(nodes, sub.Nodes)
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
	for _, node := range nodes {
		sb.WriteString(fmt.Sprintf("- %s (%s) [%s]\n", node.Name, node.Type, node.ID))
	}

	if len(sub.Relationships) > 0 {
		lines := make([]string, 0, len(sub.Relationships))
		for _, rel := range sub.Relationships {
			src, dst := byID[rel.SourceID], byID[rel.TargetID]
			if src == nil || dst == nil {
				continue
			}
			lines = append(lines, fmt.Sprintf("- %s -[%s]-> %s", src.Name, rel.Type, dst.Name))
		}
		sort.Strings(lines)
		sb.WriteString("\nRelationships:\n")
		sb.WriteString(strings.Join(lines, "\n"))
		sb.WriteString("\n")
	}
	return sb.String(), nil
}

func (s *Server) handleGraphStats() string {
	stats := s.graph.Stats()

	var sb strings.Builder
	sb.WriteString("## Knowledge Graph Stats\n\n")
	sb.WriteString(fmt.Sprintf("Nodes: %d\n", stats.NodeCount))
	sb.WriteString(fmt.Sprintf("Relationships: %d\n", stats.RelationshipCount))

	if len(stats.NodeTypes) > 0 {
		sb.WriteString("\nNodes by type:\n")
		for _, typ := range sortedKeys(stats.NodeTypes) {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", typ, stats.NodeTypes[typ]))
		}
	}
	if len(stats.RelationshipTypes) > 0 {
		sb.WriteString("\nRelationships by type:\n")
		for _, typ := range sortedKeys(stats.RelationshipTypes) {
			sb.WriteString(fmt.Sprintf("- %s: %d\n", typ, stats.RelationshipTypes[typ]))
		}
	}
	return sb.String()
}

func (s *Server) overview() string {
	stats := s.graph.Stats()
	var sb strings.Builder
	sb.WriteString("Smartie Knowledge Base\n\n")
	sb.WriteString(fmt.Sprintf("Indexed pages: %d\n", s.store.Count()))
	sb.WriteString(fmt.Sprintf("Graph nodes: %d\n", stats.NodeCount))
	sb.WriteString(fmt.Sprintf("Graph relationships: %d\n", stats.RelationshipCount))
	return sb.String()
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Run starts the MCP server with stdio transport.
func (s *Server) Run(ctx context.Context, stdin io.Reader, stdout io.Writer) error {
	if stdin == nil || stdout == nil {
		return fmt.Errorf("stdin and stdout must not be nil")
	}

	reader := bufio.NewReader(stdin)
	encoder := json.NewEncoder(stdout)
	// Note: Do NOT use SetIndent - MCP protocol requires compact JSON (one line per message)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		line, err := reader.ReadBytes('\n')
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}

		var req map[string]any
		if err := json.Unmarshal(line, &req); err != nil {
			continue
		}

		resp := s.handleRequest(ctx, req)
		if err := encoder.Encode(resp); err != nil {
			return err
		}
	}
}

func (s *Server) handleRequest(ctx context.Context, req map[string]any) map[string]any {
	method, _ := req["method"].(string)
	id := req["id"]

	switch method {
	case "initialize":
		return s.handleInitialize(id)
	case "tools/list":
		return s.handleToolsList(id)
	case "tools/call":
		return s.handleToolsCall(ctx, id, req)
	case "resources/list":
		return s.handleResourcesList(id)
	case "resources/read":
		return s.handleResourcesRead(ctx, id, req)
	default:
		return errorResponse(id, -32601, "Method not found: "+method)
	}
}

func (s *Server) handleInitialize(id any) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"protocolVersion": "2024-11-05",
			"serverInfo": map[string]any{
				"name":    "smartie",
				"version": "0.1.0",
			},
			"capabilities": map[string]any{
				"tools": map[string]any{
					"listChanged": false,
				},
				"resources": map[string]any{
					"listChanged": false,
				},
			},
		},
	}
}

func (s *Server) handleToolsList(id any) map[string]any {
	tools := s.ListTools()
	toolList := make([]map[string]any, len(tools))
	for i, tool := range tools {
		schema, _ := json.Marshal(tool.InputSchema)
		var schemaMap map[string]any
		_ = json.Unmarshal(schema, &schemaMap)

		toolList[i] = map[string]any{
			"name":        tool.Name,
			"description": tool.Description,
			"inputSchema": schemaMap,
		}
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"tools": toolList,
		},
	}
}

func (s *Server) handleToolsCall(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	name, _ := params["name"].(string)
	args, _ := params["arguments"].(map[string]any)

	result, err := s.CallTool(ctx, name, args)
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"content": []map[string]any{
				{
					"type": "text",
					"text": result,
				},
			},
		},
	}
}

func (s *Server) handleResourcesList(id any) map[string]any {
	resources := s.ListResources()
	resourceList := make([]map[string]any, len(resources))
	for i, res := range resources {
		resourceList[i] = map[string]any{
			"uri":         res.URI,
			"name":        res.Name,
			"description": res.Description,
			"mimeType":    res.MimeType,
		}
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"resources": resourceList,
		},
	}
}

func (s *Server) handleResourcesRead(ctx context.Context, id any, req map[string]any) map[string]any {
	params, _ := req["params"].(map[string]any)
	if params == nil {
		return errorResponse(id, -32602, "Invalid params")
	}

	uri, _ := params["uri"].(string)

	content, err := s.ReadResource(ctx, uri)
	if err != nil {
		return errorResponse(id, -32000, err.Error())
	}

	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result": map[string]any{
			"contents": []map[string]any{
				{
					"uri":      uri,
					"mimeType": "text/plain",
					"text":     content,
				},
			},
		},
	}
}

func errorResponse(id any, code int, message string) map[string]any {
	return map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error": map[string]any{
			"code":    code,
			"message": message,
		},
	}
}
