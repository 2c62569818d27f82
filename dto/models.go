package dto

import "image"

// ExtractionSource records which strategy produced a page's items.
type ExtractionSource string

const (
	SourceStructured ExtractionSource = "structured"
	SourceOCR        ExtractionSource = "ocr"
	SourceTextLayer  ExtractionSource = "text_layer"
	SourceOCRFailed  ExtractionSource = "ocr_failed"
	// SourceEmpty marks a page with neither raster nor text, such as a blank separator page.
	SourceEmpty ExtractionSource = "empty"
)

// LineItem is one detected billing row.
type LineItem struct {
	Name     string  `json:"item_name"`
	Quantity float64 `json:"item_quantity"`
	Rate     float64 `json:"item_rate"`
	Amount   float64 `json:"item_amount"`
}

type PageResult struct {
	PageNumber int              `json:"page_no,string"`
	Items      []LineItem       `json:"bill_items"`
	Source     ExtractionSource `json:"source"`
}

type DocumentResult struct {
	Pages            []PageResult `json:"pagewise_line_items"`
	TotalItemCount   int          `json:"total_item_count"`
	ReconciledAmount float64      `json:"reconciled_amount"`
}

// PageImage is one rasterized page handed to the page extractor.
// Image is nil when the page has no embedded raster; TextLayer then carries
// the rows of a digital PDF, if any.
type PageImage struct {
	Number    int
	Image     image.Image
	TextLayer []string
}
