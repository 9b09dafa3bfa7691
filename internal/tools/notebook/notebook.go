package notebook

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/jupyter-bridge/jupyter-mcp/internal/prompts"
	"github.com/jupyter-bridge/jupyter-mcp/internal/tools"
)

// AddMarkdownCellArgs represents the arguments for the add_markdown_cell tool.
type AddMarkdownCellArgs struct {
	CellContent string `json:"cell_content"`
}

// AddExecuteCodeCellArgs represents the arguments for the add_execute_code_cell tool.
type AddExecuteCodeCellArgs struct {
	CellContent string `json:"cell_content"`
}

// CreateAddMarkdownCellTool creates the add_markdown_cell tool.
func CreateAddMarkdownCellTool(ctx *tools.Context, svc *Service) *tools.ServerTool {
	handler := func(ctxReq context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[AddMarkdownCellArgs]) (*mcp.CallToolResultFor[any], error) {
		ctx.Logger.WithTool("add_markdown_cell").Info("Tool invoked", "content_length", len(params.Arguments.CellContent))

		result := svc.AddMarkdownCell(ctxReq, params.Arguments.CellContent)
		return tools.TextResponse(result), nil
	}

	tool := &mcp.Tool{
		Name:        "add_markdown_cell",
		Description: prompts.AddMarkdownCellToolDoc,
	}

	return &tools.ServerTool{
		Tool: tool,
		RegisterFunc: func(server *mcp.Server) {
			mcp.AddTool(server, tool, wrapTyped(handler))
		},
	}
}

// CreateAddExecuteCodeCellTool creates the add_execute_code_cell tool.
func CreateAddExecuteCodeCellTool(ctx *tools.Context, svc *Service) *tools.ServerTool {
	handler := func(ctxReq context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[AddExecuteCodeCellArgs]) (*mcp.CallToolResultFor[any], error) {
		logger := ctx.Logger.WithTool("add_execute_code_cell")
		logger.Info("Tool invoked", "content_length", len(params.Arguments.CellContent))

		outputs := svc.AddExecuteCodeCell(ctxReq, params.Arguments.CellContent)
		logger.Info("Tool completed", "outputs", len(outputs))
		return tools.TextListResponse(outputs), nil
	}

	tool := &mcp.Tool{
		Name:        "add_execute_code_cell",
		Description: prompts.AddExecuteCodeCellToolDoc,
	}

	return &tools.ServerTool{
		Tool: tool,
		RegisterFunc: func(server *mcp.Server) {
			mcp.AddTool(server, tool, wrapTyped(handler))
		},
	}
}

// CreateReadNotebookContentTool creates the read_notebook_content tool.
func CreateReadNotebookContentTool(ctx *tools.Context, svc *Service) *tools.ServerTool {
	handler := func(ctxReq context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[struct{}]) (*mcp.CallToolResultFor[any], error) {
		logger := ctx.Logger.WithTool("read_notebook_content")
		logger.Info("Tool invoked")

		content := svc.ReadNotebookContent(ctxReq)
		if content.Error != "" {
			logger.Error("Tool failed", "error", content.Error)
		}
		return tools.JSONResponse(content), nil
	}

	tool := &mcp.Tool{
		Name:        "read_notebook_content",
		Description: prompts.ReadNotebookContentToolDoc,
	}

	return &tools.ServerTool{
		Tool: tool,
		RegisterFunc: func(server *mcp.Server) {
			mcp.AddTool(server, tool, wrapTyped(handler))
		},
	}
}

// CreateKernelRestartTool creates the kernel_restart tool.
func CreateKernelRestartTool(ctx *tools.Context, svc *Service) *tools.ServerTool {
	handler := func(ctxReq context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[struct{}]) (*mcp.CallToolResultFor[any], error) {
		ctx.Logger.WithTool("kernel_restart").Info("Tool invoked")

		result := svc.RestartKernel(ctxReq)
		return tools.TextResponse(result), nil
	}

	tool := &mcp.Tool{
		Name:        "kernel_restart",
		Description: prompts.KernelRestartToolDoc,
	}

	return &tools.ServerTool{
		Tool: tool,
		RegisterFunc: func(server *mcp.Server) {
			mcp.AddTool(server, tool, wrapTyped(handler))
		},
	}
}

// wrapTyped adapts a typed handler to the map[string]any parameter shape
// used at registration, round-tripping the arguments through JSON.
func wrapTyped[T any](handler func(context.Context, *mcp.ServerSession, *mcp.CallToolParamsFor[T]) (*mcp.CallToolResultFor[any], error)) func(context.Context, *mcp.ServerSession, *mcp.CallToolParamsFor[map[string]any]) (*mcp.CallToolResultFor[any], error) {
	return func(ctx context.Context, session *mcp.ServerSession, params *mcp.CallToolParamsFor[map[string]any]) (*mcp.CallToolResultFor[any], error) {
		var args T
		data, err := json.Marshal(params.Arguments)
		if err != nil {
			return tools.ErrorResponsef("failed to marshal arguments: %v", err), nil
		}
		if err := json.Unmarshal(data, &args); err != nil {
			return tools.ErrorResponsef("failed to unmarshal arguments: %v", err), nil
		}

		typedParams := &mcp.CallToolParamsFor[T]{
			Name:      params.Name,
			Arguments: args,
		}
		return handler(ctx, session, typedParams)
	}
}
