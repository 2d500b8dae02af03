// Package processor contains the build logic of greekpron. It renders and
// annotates whole source directories for the HTML and TeX outputs, annotates
// single pages in pipe mode and resolves ad hoc word lists. One failing
// document never stops its siblings.
package processor
