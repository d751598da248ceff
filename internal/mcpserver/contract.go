package mcpserver

// DocumentFormatContract describes the rich-text document format of card
// bodies and the rule records that LLM consumers exchange with the tools.
const DocumentFormatContract = `# Cardsmith Document Format Contract

A card has two rich-text fields: ` + "`body`" + ` and ` + "`secondary`" + `.
Both hold an HTML fragment that is split into **units** (paragraphs).

## Units

1. Every top-level block element (` + "`<div>`" + `, ` + "`<p>`" + `, headings,
   ` + "`<blockquote>`" + `) is one unit.
2. Text outside a block element is grouped into one unit per run, ended by
   the next block or by ` + "`<br>`" + `.
3. Units are numbered from 0 in document order. Tools that take a selection
   use these indices.
4. A unit keeps its exact markup. Tools only rewrite the units they touch.

## Styles

Formatting is carried in inline ` + "`style`" + ` attributes, written compactly:

` + "```" + `html
<div style="text-align:center">Chapter <span style="font-weight:bold;color:#c0392b">One</span></div>
` + "```" + `

- Alignment: ` + "`left`" + `, ` + "`center`" + `, ` + "`right`" + `, ` + "`justify`" + `.
- Formatting: ` + "`color`" + `, ` + "`font-size`" + ` (px), ` + "`font-weight:bold`" + `, ` + "`font-style:italic`" + `.
- Scripts, event handlers, iframes and images are removed on save.

## Queries

- **literal** (default): case-insensitive substring match.
- **regex**: RE2 syntax. An invalid pattern matches nothing.
- A range query (` + "`start` ... `end`" + `) matches every unit that contains the
  start anchor followed later by the end anchor.

## Transformation rules

` + "```" + `json
{
  "id": "rule_1",
  "name": "Speaker names",
  "pattern": "Zhang San",
  "isRegex": false,
  "formatting": {"color": "#c0392b", "isBold": true},
  "scope": "match",
  "isActive": true
}
` + "```" + `

- ` + "`scope`" + ` is ` + "`match`" + ` (wrap each occurrence) or ` + "`paragraph`" + ` (style the whole unit).
- Inactive rules are skipped. Rules apply in list order.
- ` + "`scan_rules`" + ` proposes rules from styled text already in a card; pass them
  to ` + "`apply_rules`" + ` on another card to replay the styling.

## Importing manuscripts

` + "`import_manuscript`" + ` accepts Markdown with optional YAML frontmatter
(` + "`title`, `subtitle`, `author`, `category`, `mode`" + `). Each non-blank line
becomes one unit. A ` + "`---`" + ` line splits the body from the secondary body.
`
