/*
Package report turns a board and its solution into shareable artefacts.

  - PNG: the lossless board export.
  - PDF: A4 pages rasterised with gg and assembled with pdfcpu.
  - HTML: Markdown rendered with goldmark and sanitised with bluemonday. Math
    delimiters survive as text so a client-side renderer can typeset them.
*/
package report
