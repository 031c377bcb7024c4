// Package cardtool ranks a race card from a local file, either in process or
// through a running racecard server.
package cardtool

import "time"

// Config holds the options of one ranking run.
type Config struct {
	File       string        // card document: .txt, .html or .pdf
	Condition  string        // track condition token or name
	Top        int           // keep only the first Top entries when positive
	JSON       bool          // render JSON instead of text lines
	URL        string        // rank through the server at URL instead of in process
	Timeout    time.Duration // HTTP request timeout in server mode
	ConfigPath string        // optional YAML config for parser and scoring settings
}
