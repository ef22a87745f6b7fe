package cmd

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wikihop/wikihop/internal/mcp"
)

var (
	callList bool
	callPipe bool
	callJSON bool
)

var callCmd = &cobra.Command{
	Use:   "call [tool] [json-args]",
	Short: "Call an MCP tool from the command line",
	Long: `Call any wikihop MCP tool with structured JSON input/output.

Tools accept JSON arguments and return JSON results, so scripts get the
same interface AI agents get over MCP without a running server.

Modes:
  wikihop call --list                           List all tools and parameters
  wikihop call <tool> '{"key":"value"}'         Call a tool with JSON args
  wikihop call --pipe                           Read JSON lines from stdin

Tool names accept shorthand: "paths" is equivalent to "wh_paths".

Examples:
  wikihop call --list
  wikihop call paths '{"source":"Chess","target":"Photosynthesis"}'
  wikihop call resolve '{"title":"chess"}'
  wikihop call status '{}'
  echo '{"tool":"wh_resolve","args":{"title":"Chess"}}' | wikihop call --pipe`,
	Args: cobra.MaximumNArgs(2),
	RunE: runCall,
}

func init() {
	rootCmd.AddCommand(callCmd)
	callCmd.Flags().BoolVar(&callList, "list", false, "List all available tools and their parameters")
	callCmd.Flags().BoolVar(&callPipe, "pipe", false, "Read JSON lines from stdin (pipe mode)")
	callCmd.Flags().BoolVar(&callJSON, "json", false, "List tools as JSON instead of YAML")
}

func runCall(cmd *cobra.Command, args []string) error {
	if callList {
		return runCallList()
	}
	if callPipe {
		return runCallPipe(cmd)
	}
	if len(args) == 0 {
		return fmt.Errorf("tool name required (run 'wikihop call --list' to see available tools)")
	}
	return runCallSingle(cmd, args)
}

// callServer builds an MCP server with every tool registered.
func callServer() (*mcp.Server, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	srv, err := mcp.New(mcp.Config{
		DatabasePath: resolveDBPath(cfg),
		MaxPaths:     cfg.Search.MaxPaths,
		Tools:        mcp.AllTools,
	})
	if err != nil {
		return nil, fmt.Errorf("create server: %w", err)
	}
	return srv, nil
}

func runCallList() error {
	srv, err := callServer()
	if err != nil {
		return err
	}
	defer srv.Close()

	schemas := srv.GetToolSchemas()

	if callJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(schemas)
	}

	enc := yaml.NewEncoder(os.Stdout)
	enc.SetIndent(2)
	defer enc.Close()
	return enc.Encode(schemas)
}

func runCallSingle(cmd *cobra.Command, args []string) error {
	toolName := normalizeToolName(args[0])

	var toolArgs map[string]interface{}
	if len(args) >= 2 {
		if err := json.Unmarshal([]byte(args[1]), &toolArgs); err != nil {
			return fmt.Errorf("invalid JSON args: %w", err)
		}
	} else {
		toolArgs = make(map[string]interface{})
	}

	srv, err := callServer()
	if err != nil {
		return err
	}
	defer srv.Close()

	result, err := srv.CallTool(cmd.Context(), toolName, toolArgs)
	if err != nil {
		return err
	}

	fmt.Println(result)
	return nil
}

// pipeRequest is the JSON format for pipe mode input.
type pipeRequest struct {
	Tool string                 `json:"tool"`
	Args map[string]interface{} `json:"args"`
}

// pipeResponse is the JSON format for pipe mode output.
type pipeResponse struct {
	Result json.RawMessage `json:"result,omitempty"`
	Error  string          `json:"error,omitempty"`
}

func runCallPipe(cmd *cobra.Command) error {
	srv, err := callServer()
	if err != nil {
		return err
	}
	defer srv.Close()

	enc := json.NewEncoder(os.Stdout)
	scanner := bufio.NewScanner(os.Stdin)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		var req pipeRequest
		if err := json.Unmarshal([]byte(line), &req); err != nil {
			enc.Encode(pipeResponse{Error: fmt.Sprintf("invalid JSON: %v", err)})
			continue
		}

		toolName := normalizeToolName(req.Tool)
		if req.Args == nil {
			req.Args = make(map[string]interface{})
		}

		result, err := srv.CallTool(cmd.Context(), toolName, req.Args)
		if err != nil {
			enc.Encode(pipeResponse{Error: err.Error()})
			continue
		}

		var raw json.RawMessage
		if err := json.Unmarshal([]byte(result), &raw); err != nil {
			b, _ := json.Marshal(result)
			raw = b
		}
		enc.Encode(pipeResponse{Result: raw})
	}

	return scanner.Err()
}

// normalizeToolName converts shorthand names to full tool names.
// "paths" -> "wh_paths", "wh_paths" -> "wh_paths"
func normalizeToolName(name string) string {
	if !strings.HasPrefix(name, "wh_") {
		return "wh_" + name
	}
	return name
}
