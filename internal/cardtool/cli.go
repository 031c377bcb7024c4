package cardtool

import "io"

// ShowHelp prints usage information for the rank tool.
func ShowHelp(w io.Writer) {
	_, _ = io.WriteString(w, `Race card ranking tool
======================

Ranks the runners of a race card for a track condition.

Usage:
  rank -file card.pdf [options]

Options:
  -file string
        Race card document (.txt, .html, .htm or .pdf)
  -condition string
        Track condition: Gd, Sft, Hy, Fm, St or the long name (default "Gd")
  -top int
        Show only the first N runners (default all)
  -json
        Print JSON instead of "rank. name: score" lines
  -url string
        Rank through a running server, e.g. http://localhost:9080
  -timeout duration
        HTTP request timeout in server mode (default 30s)
  -config string
        YAML config with parser and scoring settings
  -log-level string
        Log level written to stderr (default "warn")
  -help
        Show this help message

Examples:
  rank -file card.txt -condition Soft
  rank -file card.html -condition Hy -top 3 -json
  rank -file card.pdf -url http://localhost:9080
`)
}
