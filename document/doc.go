// Package document implements the render-independent paragraph/token model
// behind the editor.
//
// A Document is an arena of paragraphs; each paragraph is an ordered list of
// nodes (words, whitespace runs, line breaks, placeholders, untokenized raw
// text, and the ephemeral overlay and badge nodes). Canonical text is the
// concatenation of every non-ephemeral node, with the document's paragraph
// separator between paragraphs.
//
// Offsets are 0-based counts of canonical runes. Points address positions in
// the tree: (paragraph, node, rune offset within the node).
package document
