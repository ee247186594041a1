// Package pdf turns raw PDF bytes into per-page text and tables.
//
// Structure and page count are read with pdfcpu, page text and positioned
// glyphs with ledongthuc/pdf. Tables are found by an ordered list of
// strategies: native glyph layout, OCR through pdftoppm and tesseract (when
// available), and whitespace patterns in the page text.
package pdf
