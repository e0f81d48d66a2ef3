// Package otdoc holds the shared types of the work-order document engine:
// the closed WorkOrderRecord field set, attachment and signature payloads,
// the engine configuration, and the error taxonomy.
//
// The engine itself is assembled from the subpackages:
//
//	doctpl  — template schema and pristine workbook
//	sheet   — merge-aware cell writes and text fitting
//	layout  — attachment image layout planning
//	imaging — image decode/resize
//	sign    — signature block placement
//	compose — composition state machine
//	export  — external PDF conversion
//
// A typical flow:
//
//	schema, _ := doctpl.Load()
//	composer := compose.New(schema, otdoc.WithLogger(log))
//	doc, _ := composer.Compose(ctx, compose.Input{Record: rec, Attachments: atts, Signatures: sig})
//	xlsx, _ := doc.Bytes()
//	pdf, _ := export.New(otdoc.WithLogger(log)).Export(ctx, xlsx)
package otdoc
