// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes cardsmith tools for LLM integration via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/cardsmith/internal/cardservice"
	"github.com/starford/cardsmith/internal/export"
	"github.com/starford/cardsmith/internal/match"
	"github.com/starford/cardsmith/internal/models"
)

const contractURI = "cardsmith://document-format"

// Server wraps the MCP server with cardsmith tools.
type Server struct {
	mcp *server.MCPServer
	svc *cardservice.Service
}

// New creates a new MCP server with all cardsmith tools registered.
func New(svc *cardservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"cardsmith",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	fieldArg := mcp.WithString("field", mcp.Description("Document field: body (default) or secondary"))

	s.mcp.AddTool(mcp.NewTool("list_cards",
		mcp.WithDescription("List cards, most recently updated first."),
		mcp.WithString("mode", mcp.Description("Optional mode filter: cover or long-text")),
	), s.listCards)

	s.mcp.AddTool(mcp.NewTool("search_cards",
		mcp.WithDescription("Full-text search through card titles and text."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
	), s.searchCards)

	s.mcp.AddTool(mcp.NewTool("read_card",
		mcp.WithDescription("Read a card as Markdown. Pass raw=true for the stored JSON state."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Card id")),
		mcp.WithBoolean("raw", mcp.Description("Return the JSON card record")),
	), s.readCard)

	s.mcp.AddTool(mcp.NewTool("find_units",
		mcp.WithDescription("Find the units of a card field matching a query and select them. "+
			"Returns the units with their indices. Read the contract via get_document_contract "+
			"or the "+contractURI+" resource for query semantics."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Card id")),
		fieldArg,
		mcp.WithString("query", mcp.Required(), mcp.Description("Query text")),
		mcp.WithString("mode", mcp.Description("literal (default) or regex")),
	), s.findUnits)

	s.mcp.AddTool(mcp.NewTool("apply_alignment",
		mcp.WithDescription("Align the currently selected units of a card field. Run find_units first."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Card id")),
		fieldArg,
		mcp.WithString("alignment", mcp.Required(), mcp.Description("left, center, right or justify")),
	), s.applyAlignment)

	s.mcp.AddTool(mcp.NewTool("apply_match_style",
		mcp.WithDescription("Style every occurrence of the current query inside the selected units. "+
			"Run find_units first."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Card id")),
		fieldArg,
		mcp.WithString("color", mcp.Description("CSS color, e.g. #c0392b")),
		mcp.WithNumber("font_size", mcp.Description("Font size in px")),
		mcp.WithBoolean("bold", mcp.Description("Bold")),
		mcp.WithBoolean("italic", mcp.Description("Italic")),
	), s.applyMatchStyle)

	s.mcp.AddTool(mcp.NewTool("scan_rules",
		mcp.WithDescription("Propose transformation rules from the styled text of a card field."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Card id")),
		fieldArg,
	), s.scanRules)

	s.mcp.AddTool(mcp.NewTool("apply_rules",
		mcp.WithDescription("Replay transformation rules on a card field. "+
			"rules is a JSON array in the format returned by scan_rules."),
		mcp.WithString("id", mcp.Required(), mcp.Description("Card id")),
		fieldArg,
		mcp.WithString("rules", mcp.Required(), mcp.Description("JSON array of transformation rules")),
	), s.applyRules)

	s.mcp.AddTool(mcp.NewTool("import_manuscript",
		mcp.WithDescription("Create a card from a Markdown manuscript. Pass the text in content, "+
			"or a url (http, https or a base64 data: URI) to fetch it from."),
		mcp.WithString("content", mcp.Description("Markdown manuscript")),
		mcp.WithString("url", mcp.Description("Where to fetch the manuscript from")),
	), s.importManuscript)

	s.mcp.AddTool(mcp.NewTool("get_document_contract",
		mcp.WithDescription("Returns the cardsmith document format contract. "+
			"Call this before editing cards to learn how units, styles and rules work."),
	), s.getDocumentContract)

	// Resource: document format contract.
	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Document Format Contract",
			mcp.WithResourceDescription("Rich-text unit, style and rule formats used by cardsmith."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readDocumentFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func field(req mcp.CallToolRequest) string {
	return req.GetString("field", models.FieldBody)
}

func (s *Server) listCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, _, err := s.svc.ListCards(ctx, 0, 0, req.GetString("mode", ""), "")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, it.ID+"\t"+it.Title)
	}
	if len(lines) == 0 {
		return mcp.NewToolResultText("no cards"), nil
	}
	return mcp.NewToolResultText(strings.Join(lines, "\n")), nil
}

func (s *Server) searchCards(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, 20)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results), nil
}

func (s *Server) readCard(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	card, err := s.svc.GetCard(ctx, id)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("not found: %s", id)), nil
	}
	if req.GetBool("raw", false) {
		return jsonResult(card), nil
	}
	return mcp.NewToolResultText(export.Markdown(card.State)), nil
}

func (s *Server) findUnits(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	text, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	q := match.Query{Text: text, Mode: match.ParseMode(req.GetString("mode", ""))}
	st, err := s.svc.FindUnits(ctx, id, field(req), q)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st), nil
}

func (s *Server) applyAlignment(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	alignment, err := req.RequireString("alignment")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	st, err := s.svc.Align(ctx, id, field(req), alignment)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st), nil
}

func (s *Server) applyMatchStyle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	f := models.FormattingStyles{
		Color:    req.GetString("color", ""),
		FontSize: req.GetInt("font_size", 0),
		IsBold:   req.GetBool("bold", false),
		IsItalic: req.GetBool("italic", false),
	}
	st, err := s.svc.StyleMatches(ctx, id, field(req), f)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st), nil
}

func (s *Server) scanRules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	list, err := s.svc.ScanRules(ctx, id, field(req))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(list), nil
}

func (s *Server) applyRules(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id, err := req.RequireString("id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	raw, err := req.RequireString("rules")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	var list []models.TransformationRule
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("invalid rules: %v", err)), nil
	}
	st, err := s.svc.ApplyRules(ctx, id, field(req), list)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(st), nil
}

func (s *Server) getDocumentContract(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(DocumentFormatContract), nil
}

func (s *Server) readDocumentFormatResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     DocumentFormatContract,
		},
	}, nil
}
