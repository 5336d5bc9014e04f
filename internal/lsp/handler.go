// Package lsp implements a minimal CCL language server: it republishes the
// analyser's single diagnostic (or clears it) whenever a document is
// opened or changed; closing a document publishes nothing.
// It has a simple one-diagnostic-per-file contract (no completion or
// semantic-token surface, diagnostics only).
package lsp

import (
	"fmt"
	"log"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"

	"ccl/internal/parser"
	"ccl/internal/semantic"
)

// Handler implements the LSP server handlers for CCL.
type Handler struct {
	mu      sync.RWMutex
	content map[string]string
}

// NewHandler creates an empty Handler.
func NewHandler() *Handler {
	return &Handler{content: make(map[string]string)}
}

func (h *Handler) Initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	log.Println("LSP Initialize called")
	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: ptrBool(true),
				Change:    ptrSyncKind(protocol.TextDocumentSyncKindFull),
			},
		},
	}, nil
}

func (h *Handler) Initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	log.Println("CCL LSP initialized")
	return nil
}

func (h *Handler) Shutdown(ctx *glsp.Context) error {
	log.Println("CCL LSP shutdown")
	return nil
}

func (h *Handler) SetTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error { return nil }

func (h *Handler) TextDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	h.checkAndPublish(ctx, params.TextDocument.URI, params.TextDocument.Text)
	return nil
}

// TextDocumentDidChange re-checks on every change notification by reading
// the file as it is saved on disk. The text carried by the change event is
// not used, so unsaved edits in the client's buffer are not checked.
func (h *Handler) TextDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	h.checkAndPublish(ctx, params.TextDocument.URI, string(content))
	return nil
}

func (h *Handler) TextDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return err
	}
	h.mu.Lock()
	delete(h.content, path)
	h.mu.Unlock()
	return nil
}

// checkAndPublish lexes, parses and analyses text, publishing whichever
// single diagnostic (or empty list) the pipeline produced.
func (h *Handler) checkAndPublish(ctx *glsp.Context, uri protocol.DocumentUri, text string) {
	path, err := uriToPath(uri)
	if err == nil {
		h.mu.Lock()
		h.content[path] = text
		h.mu.Unlock()
	}

	diagnostics := Check(text)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: diagnostics,
	})
}

// Check runs the full lex/parse/analyse pipeline over text and converts
// whatever single failure (if any) it hit into an LSP diagnostic list.
func Check(text string) []protocol.Diagnostic {
	prog, scanErrs, parseErr := parser.ParseSource(text)
	if len(scanErrs) > 0 {
		return []protocol.Diagnostic{scanDiagnostic(scanErrs[0].Message, scanErrs[0].Position.Line, scanErrs[0].Position.Column)}
	}
	if parseErr != nil {
		return []protocol.Diagnostic{scanDiagnostic(parseErr.Message, parseErr.Position.Line, parseErr.Position.Column)}
	}
	if _, diag := semantic.Analyze(prog); diag != nil {
		return []protocol.Diagnostic{scanDiagnostic(diag.Message, diag.Position.Line, diag.Position.Column)}
	}
	return nil
}

func scanDiagnostic(message string, line, column int) protocol.Diagnostic {
	return protocol.Diagnostic{
		Range: protocol.Range{
			Start: protocol.Position{Line: uint32(line - 1), Character: uint32(column - 1)},
			End:   protocol.Position{Line: uint32(line - 1), Character: uint32(column + 3)},
		},
		Severity: ptrSeverity(protocol.DiagnosticSeverityError),
		Source:   ptrString("cclc"),
		Message:  message,
	}
}

func uriToPath(rawURI string) (string, error) {
	u, err := url.Parse(rawURI)
	if err != nil {
		return "", fmt.Errorf("invalid URI %s: %w", rawURI, err)
	}
	path := u.Path
	if runtime.GOOS == "windows" && strings.HasPrefix(path, "/") && len(path) > 3 && path[2] == ':' {
		path = path[1:]
	}
	return filepath.FromSlash(path), nil
}

func ptrBool(b bool) *bool                                             { return &b }
func ptrSyncKind(k protocol.TextDocumentSyncKind) *protocol.TextDocumentSyncKind { return &k }
func ptrSeverity(s protocol.DiagnosticSeverity) *protocol.DiagnosticSeverity    { return &s }
func ptrString(s string) *string                                       { return &s }
