package services

import (
  "archive/zip"
  "bytes"
  "encoding/xml"
  "fmt"
  "io"
  "path/filepath"
  "strings"

  pdf "github.com/ledongthuc/pdf"
)

// ExtractText determines true file type from bytes (sniffing) with MIME and
// extension as fallback, then extracts plain text. Supported: PDF, DOCX.
func ExtractText(originalName string, mimeType string, data []byte) (string, error) {
  ext := strings.ToLower(filepath.Ext(originalName))
  mt := strings.ToLower(strings.TrimSpace(mimeType))

  if len(data) == 0 {
    return "", fmt.Errorf("empty file: name=%s mime=%s", originalName, mimeType)
  }

  // Magic bytes first, they are more reliable than what the browser claims.
  if isPDF(data) {
    return extractPDF(data)
  }
  if isZip(data) {
    return extractDOCX(data)
  }

  if mt == "application/pdf" || ext == ".pdf" {
    return "", fmt.Errorf("file claims pdf but missing %%PDF header: name=%s mime=%s", originalName, mimeType)
  }
  if mt == "application/vnd.openxmlformats-officedocument.wordprocessingml.document" || ext == ".docx" {
    // docx is a zip container; if we got here it is corrupted
    return "", fmt.Errorf("file claims docx but is not a valid zip container: name=%s mime=%s", originalName, mimeType)
  }

  return "", fmt.Errorf("unsupported file type: name=%s ext=%s mime=%s", originalName, ext, mimeType)
}

// SupportedDocumentType reports whether the claimed MIME type or extension
// is one we accept, checked before any bytes are read.
func SupportedDocumentType(originalName string, mimeType string) bool {
  ext := strings.ToLower(filepath.Ext(originalName))
  mt := strings.ToLower(strings.TrimSpace(mimeType))
  switch mt {
  case "application/pdf",
    "application/vnd.openxmlformats-officedocument.wordprocessingml.document":
    return true
  }
  return ext == ".pdf" || ext == ".docx"
}

func isPDF(b []byte) bool {
  // PDF starts with "%PDF-"
  return len(b) >= 5 && string(b[:5]) == "%PDF-"
}

func isZip(b []byte) bool {
  // ZIP local file header: PK\x03\x04
  return len(b) >= 4 && b[0] == 'P' && b[1] == 'K' && b[2] == 3 && b[3] == 4
}

func extractPDF(data []byte) (string, error) {
  r, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
  if err != nil {
    return "", fmt.Errorf("pdf reader: %w", err)
  }
  plain, err := r.GetPlainText()
  if err != nil {
    return "", fmt.Errorf("pdf plaintext: %w", err)
  }
  b, err := io.ReadAll(plain)
  if err != nil {
    return "", fmt.Errorf("pdf read: %w", err)
  }
  return collapseWhitespace(string(b)), nil
}

func extractDOCX(zipBytes []byte) (string, error) {
  zr, err := zip.NewReader(bytes.NewReader(zipBytes), int64(len(zipBytes)))
  if err != nil {
    return "", fmt.Errorf("docx zip: %w", err)
  }
  var doc *zip.File
  for _, f := range zr.File {
    if f.Name == "word/document.xml" {
      doc = f
      break
    }
  }
  if doc == nil {
    return "", fmt.Errorf("zip does not look like docx: no word/document.xml")
  }
  rc, err := doc.Open()
  if err != nil {
    return "", err
  }
  b, _ := io.ReadAll(rc)
  _ = rc.Close()

  s := collapseWhitespace(extractTextFromXML(b, "t"))
  if s == "" {
    return "", fmt.Errorf("no text extracted from docx")
  }
  return s, nil
}

// extractTextFromXML gathers the character data of every element whose
// local name matches tag (<w:t> runs for DOCX).
func extractTextFromXML(xmlBytes []byte, tag string) string {
  dec := xml.NewDecoder(bytes.NewReader(xmlBytes))
  var out strings.Builder
  for {
    tok, err := dec.Token()
    if err != nil {
      break
    }
    se, ok := tok.(xml.StartElement)
    if !ok {
      continue
    }
    if se.Name.Local != tag {
      continue
    }
    var v string
    _ = dec.DecodeElement(&v, &se)
    if v != "" {
      out.WriteString(v)
      out.WriteString(" ")
    }
  }
  return out.String()
}

func collapseWhitespace(s string) string {
  s = strings.ReplaceAll(s, "\u00a0", " ")
  fields := strings.Fields(s)
  return strings.Join(fields, " ")
}
