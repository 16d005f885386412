// Package prompt loads prompt templates and composes them with the
// selected text and the document's frontmatter tags into the final text
// sent to a generation backend.
//
// Templates are plain files in a directory. An optional YAML frontmatter
// block carries generation parameters:
//
//	---
//	temperature: 0.7
//	max_tokens: 300
//	---
//	Rewrite the following text to be clearer:
//	{selection}
package prompt
