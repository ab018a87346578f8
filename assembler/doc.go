// Package assembler folds a model.Stream into ordered, caller-visible chunks.
//
// Content fragments are buffered and cut into chunks by a pluggable
// Segmenter (turn boundaries, fixed rune counts or the whole message). Tool
// calls close the current segment and surface as their own chunk,
// "Using <tool>...", carrying a ToolUsage annotation. A tool callback may
// return ErrStop to end the turn early, which is how handoffs stop further
// output from the previous agent.
package assembler
