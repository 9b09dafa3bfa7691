// Package prompts contains all prompt strings and descriptions used by the tools.
package prompts

// Notebook tool descriptions
const (
	// AddMarkdownCellToolDoc is the description for the add_markdown_cell tool
	AddMarkdownCellToolDoc = `Add a markdown cell to the end of the connected Jupyter notebook.

The cell is appended to the live, collaboratively-edited document; any other
connected client sees it immediately. Returns a short confirmation message.

Usage notes:

1. cell_content is raw markdown source; it is stored verbatim
2. The connection to the notebook is established lazily and re-established
   transparently if it has dropped since the last call`

	// AddExecuteCodeCellToolDoc is the description for the add_execute_code_cell tool
	AddExecuteCodeCellToolDoc = `Add a code cell to the end of the connected Jupyter notebook and execute it
on the running kernel.

Waits up to 30 seconds for the cell to produce output, then returns one text
block per output, normalized to plain text (rich HTML or image outputs are
replaced with placeholders). A cell that produces no output within the wait
window yields an empty result; the execution may still be running remotely.`

	// ReadNotebookContentToolDoc is the description for the read_notebook_content tool
	ReadNotebookContentToolDoc = `Read the entire content of the connected Jupyter notebook.

Returns a JSON object with a "cells" array (index, type, content, and for
code cells the normalized outputs) and a "total_cells" count. On failure the
object carries an "error" field with an empty cell list instead.`

	// KernelRestartToolDoc is the description for the kernel_restart tool
	KernelRestartToolDoc = `Restart the Jupyter kernel backing code execution.

Stops the current kernel client, drops the notebook connection if one is
open, and starts a fresh kernel. Variables and imports from previous
executions are lost. Returns a confirmation message.`
)
