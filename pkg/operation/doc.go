/*
Package operation plans and runs a patch over site files.

	+--------+     +--------+     +-----------+     +--------+
	| Config | --> |  Plan  | --> | Transform | --> | Commit |
	+--------+     +--------+     +-----------+     +--------+
	                (globs)        (in memory)       (atomic)

🔄 Flow:
1. Plan expands each patch's globs and merges edits per file
2. Transform reads every file and applies its rules in memory,
   concurrently when async is set
3. Commit writes changed files only when every transform succeeded;
   a failed write restores the files already written

⚡ Guarantees:
- No file is written when any edit in the run fails
- Each file is read and transformed by exactly one goroutine
- Unchanged files are never rewritten
*/
package operation
