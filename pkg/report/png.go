package report

// Exporter is anything that can produce a lossless PNG of the board.
type Exporter interface {
	Export() ([]byte, error)
}

// PNG returns the board export unchanged.
func PNG(src Exporter) ([]byte, error) {
	return src.Export()
}
