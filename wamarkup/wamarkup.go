// Package wamarkup converts Markdown text to WhatsApp message markup.
//
// WhatsApp has no entity system; formatting travels inline in the message
// text (*bold*, _italic_, ~strikethrough~, monospace). Render walks the
// Markdown AST and rewrites each construct into its WhatsApp form,
// flattening what WhatsApp cannot express: headings become bold lines,
// links become "text (url)".
package wamarkup

import (
	"strconv"
	"strings"

	"rsc.io/markdown"
)

// Render converts Markdown text to WhatsApp message markup.
func Render(text string) string {
	p := markdown.Parser{Strikethrough: true}
	doc := p.Parse(text)
	return renderBlocks(doc.Blocks, "\n\n")
}

func renderBlocks(blocks []markdown.Block, sep string) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if s := renderBlock(b); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, sep)
}

func renderBlock(b markdown.Block) string {
	switch block := b.(type) {
	case *markdown.Paragraph:
		return renderBlock(block.Text)
	// Tight list items hold their text directly, without a paragraph.
	case *markdown.Text:
		var sb strings.Builder
		renderInlines(block.Inline, &sb)
		return sb.String()
	case *markdown.Heading:
		var sb strings.Builder
		renderInlines(block.Text.Inline, &sb)
		return "*" + sb.String() + "*"
	case *markdown.Quote:
		return prefixLines(renderBlocks(block.Blocks, "\n"), "> ")
	case *markdown.CodeBlock:
		// The info string is dropped; WhatsApp code blocks carry no
		// language.
		return "```\n" + strings.Join(block.Text, "\n") + "\n```"
	case *markdown.List:
		return renderList(block)
	case *markdown.ThematicBreak:
		return "⸻"
	}
	return ""
}

func renderList(list *markdown.List) string {
	ordered := list.Bullet == '.' || list.Bullet == ')'
	n := list.Start
	items := make([]string, 0, len(list.Items))
	for _, ib := range list.Items {
		item, ok := ib.(*markdown.Item)
		if !ok {
			continue
		}
		body := renderBlocks(item.Blocks, "\n")
		if ordered {
			items = append(items, strconv.Itoa(n)+". "+body)
			n++
		} else {
			items = append(items, "- "+body)
		}
	}
	return strings.Join(items, "\n")
}

func renderInlines(inlines markdown.Inlines, sb *strings.Builder) {
	for _, inline := range inlines {
		renderInline(inline, sb)
	}
}

func renderInline(i markdown.Inline, sb *strings.Builder) {
	switch inline := i.(type) {
	case *markdown.Plain:
		sb.WriteString(inline.Text)
	case *markdown.Escaped:
		sb.WriteString(inline.Text)
	case *markdown.Strong:
		sb.WriteString("*")
		renderInlines(inline.Inner, sb)
		sb.WriteString("*")
	case *markdown.Emph:
		sb.WriteString("_")
		renderInlines(inline.Inner, sb)
		sb.WriteString("_")
	case *markdown.Del:
		sb.WriteString("~")
		renderInlines(inline.Inner, sb)
		sb.WriteString("~")
	case *markdown.Code:
		sb.WriteString("`")
		sb.WriteString(inline.Text)
		sb.WriteString("`")
	case *markdown.Link:
		renderLink(inline.Inner, inline.URL, sb)
	case *markdown.Image:
		renderLink(inline.Inner, inline.URL, sb)
	case *markdown.AutoLink:
		sb.WriteString(inline.Text)
	case *markdown.SoftBreak, *markdown.HardBreak:
		sb.WriteString("\n")
	}
}

// renderLink writes the link text followed by the URL in parentheses,
// unless the text already is the URL.
func renderLink(inner markdown.Inlines, url string, sb *strings.Builder) {
	var text strings.Builder
	renderInlines(inner, &text)
	sb.WriteString(text.String())
	if text.String() != url {
		sb.WriteString(" (")
		sb.WriteString(url)
		sb.WriteString(")")
	}
}

func prefixLines(s, prefix string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
