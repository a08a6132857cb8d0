package interfaces

// PDFService renders markdown reports as PDF documents
type PDFService interface {
	ConvertMarkdownToPDF(markdown, title string) ([]byte, error)
}
