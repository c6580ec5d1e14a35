package render

import "fmt"

// stylesheet returns the page CSS. Atomic blocks, image rows and option rows
// carry break-inside: avoid so the print engine never splits them.
func stylesheet(columns int) string {
	return fmt.Sprintf(baseCSS, columns)
}

const baseCSS = `
@page { size: A4; margin: 12mm; }
body { font-family: "Times New Roman", serif; font-size: 11pt; margin: 0; }
.print-container { position: relative; }
.exam-header { text-align: center; }
.institute-name { margin: 0 0 4pt; font-size: 18pt; }
.exam-meta { display: flex; justify-content: space-between; align-items: center; }
.meta-left, .meta-right { text-align: left; }
.test-name { font-weight: bold; font-size: 13pt; }
.student-name { text-align: left; margin-top: 4pt; }
.header-divider { border: 0; border-top: 1px solid #000; }
.section-block { margin-bottom: 10pt; }
.section-header { break-inside: avoid; page-break-inside: avoid; break-after: avoid; }
.section-title { font-size: 13pt; margin: 6pt 0; }
.section-instructions { margin: 0 0 4pt 14pt; padding: 0; }
.marking-scheme { display: flex; gap: 12pt; margin-bottom: 6pt; }
.questions-columns { column-count: %d; column-gap: 8mm; column-rule: 1px solid #ccc; }
.print-question { margin-bottom: 8pt; }
.block.atomic, .image-row, .options-grid, .option-item { break-inside: avoid; page-break-inside: avoid; }
.block-lead .question-number { font-weight: bold; float: left; margin-right: 4pt; }
.image-row { display: flex; flex-wrap: nowrap; gap: 4pt; margin: 3pt 0; }
.image-row img { flex: 1 1 0; min-width: 0; max-height: 40mm; object-fit: contain; }
.options-grid { display: grid; grid-auto-flow: column; grid-auto-columns: 1fr; gap: 2pt 8pt; }
.option-label { font-weight: bold; margin-right: 2pt; }
.correct-answer { font-weight: bold; text-decoration: underline; }
.role-explanation, .role-answer { margin-top: 3pt; font-size: 10pt; }
.block-label { font-weight: bold; }
.print-watermark { display: none; }
@media print {
  .print-watermark {
    display: block; position: fixed; top: 45%%; left: 0; right: 0; text-align: center;
    font-size: 72pt; color: rgba(0, 0, 0, 0.06); transform: rotate(-30deg); z-index: 0;
    pointer-events: none;
  }
}
`
