// Package annotate injects transcriptions next to Greek words. The HTML
// annotator emits ruby or interlinear markup and leaves everything that is
// not Greek text byte-identical. The TeX annotator wraps words in
// \greekpron macro calls.
package annotate
