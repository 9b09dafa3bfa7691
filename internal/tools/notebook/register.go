// Package notebook provides registration for Jupyter notebook operation tools.
package notebook

import (
	"github.com/jupyter-bridge/jupyter-mcp/internal/tools"
)

// CreateNotebookTools creates all notebook operation tools.
func CreateNotebookTools(ctx *tools.Context, svc *Service) []*tools.ServerTool {
	return []*tools.ServerTool{
		CreateAddMarkdownCellTool(ctx, svc),
		CreateAddExecuteCodeCellTool(ctx, svc),
		CreateReadNotebookContentTool(ctx, svc),
		CreateKernelRestartTool(ctx, svc),
	}
}
