// Package render turns a Markdown source plus its title file into a
// standalone HTML page ready for annotation. Pages come from pandoc or from
// an in-process goldmark pipeline.
package render
