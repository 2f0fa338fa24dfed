package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"csrefactor/internal/logging"
	"csrefactor/internal/query"
	"csrefactor/internal/workspace"
)

var (
	callJSON    string
	callPreview bool
)

var callCmd = &cobra.Command{
	Use:   "call <operation>",
	Short: "Run one refactoring or query operation and print its JSON result",
	Long: `call drives a single operation through the engine and writes its
response to stdout as JSON, per the tool-surface contract.

The request payload is read from --json, or from stdin if --json is
omitted. Mutating operations commit their changes unless --preview is
set, in which case the response's changes describe the edit without
writing it.

Example:
  csref call rename_symbol --json '{"sourceFile":"/src/App/Foo.cs","symbolName":"Foo","newName":"Bar"}'`,
	Args: cobra.ExactArgs(1),
	RunE: runCall,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Load the workspace and report its document count and lifecycle state",
	RunE:  runStatus,
}

var listCmd = &cobra.Command{
	Use:   "operations",
	Short: "List every operation name accepted by `csref call`",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range availableOperations() {
			fmt.Println(name)
		}
		return nil
	},
}

func init() {
	callCmd.Flags().StringVar(&callJSON, "json", "", "request payload as a JSON string (reads stdin if omitted)")
	callCmd.Flags().BoolVar(&callPreview, "preview", false, "compute and render changes without committing them")
}

func loadWorkspace(ctx context.Context) (*workspace.Workspace, error) {
	root := cfg.WorkspaceRoot
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("resolve working directory: %w", err)
		}
		root = wd
	}
	ws := workspace.New(root)
	if err := ws.Load(ctx); err != nil {
		return nil, fmt.Errorf("load workspace at %s: %w", root, err)
	}
	return ws, nil
}

func readPayload() (json.RawMessage, error) {
	if callJSON != "" {
		return json.RawMessage(callJSON), nil
	}
	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	return json.RawMessage(data), nil
}

func runCall(cmd *cobra.Command, args []string) error {
	name := args[0]
	log := logging.Get(logging.CategoryCLI)

	payload, err := readPayload()
	if err != nil {
		return err
	}

	budget := opTimeout
	if budget == 0 {
		budget = timeoutFor(cfg, name)
	}
	baseCtx := cmd.Context()
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, cancel := context.WithTimeout(baseCtx, budget)
	defer cancel()

	ws, err := loadWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Dispose(context.Background(), cfg.DisposeTimeout)

	log.Info("running operation", zap.String("operation", name), zap.Bool("preview", callPreview))

	if handler, ok := mutatingRegistry[name]; ok {
		result, err := handler(ctx, ws, payload, callPreview)
		if err != nil {
			fmt.Println(string(renderError(err)))
			return nil
		}
		out, err := renderResult(result)
		if err != nil {
			return fmt.Errorf("render result: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	if handler, ok := queryRegistry[name]; ok {
		start := time.Now()
		engine := query.New(ws)
		defer engine.Close()
		result, err := handler(ctx, engine, payload)
		if err != nil {
			fmt.Println(string(renderError(err)))
			return nil
		}
		out, err := renderQuery(result, time.Since(start).Milliseconds())
		if err != nil {
			return fmt.Errorf("render result: %w", err)
		}
		fmt.Println(string(out))
		return nil
	}

	fmt.Println(string(renderError(unknownOperationError(name))))
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	baseCtx := cmd.Context()
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	ctx, cancel := context.WithTimeout(baseCtx, 30*time.Second)
	defer cancel()

	ws, err := loadWorkspace(ctx)
	if err != nil {
		return err
	}
	defer ws.Dispose(context.Background(), cfg.DisposeTimeout)

	sol := ws.CurrentSolution()
	fmt.Printf("workspace: %s\n", cfg.WorkspaceRoot)
	fmt.Printf("state: %s\n", ws.Lifecycle())
	fmt.Printf("projects: %d\n", len(sol.Projects))
	fmt.Printf("documents: %d\n", len(sol.AllDocuments()))
	return nil
}
