package compose

import (
	"bytes"
	"image/png"

	"github.com/boombuler/barcode"
	"github.com/boombuler/barcode/code128"
	"go.uber.org/zap"
)

// Barcode pixel box inside its header cell.
const (
	barcodeWidthPx  = 160
	barcodeHeightPx = 18
	barcodePadPx    = 2
)

// placeFolioBarcode renders the folio as a Code 128 strip in the header so
// printed orders can be scanned back into the help desk. Best-effort: a
// folio that does not encode only costs the barcode.
func (c *Composer) placeFolioBarcode(doc *Document, folio string) {
	cell := c.schema.Sections.BarcodeCell
	if cell == "" || folio == "" {
		return
	}
	encoded, err := code128.Encode(folio)
	if err != nil {
		c.log.Warn("folio does not encode as code128, skipping barcode",
			zap.String("folio", folio), zap.Error(err))
		return
	}
	scaled, err := barcode.Scale(encoded, barcodeWidthPx, barcodeHeightPx)
	if err != nil {
		c.log.Warn("scaling folio barcode failed",
			zap.String("folio", folio), zap.Error(err))
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, scaled); err != nil {
		c.log.Warn("encoding folio barcode failed", zap.Error(err))
		return
	}
	if err := doc.writer.InsertImage(cell, buf.Bytes(), ".png", barcodePadPx, barcodePadPx); err != nil {
		c.log.Warn("inserting folio barcode failed", zap.Error(err))
	}
}
