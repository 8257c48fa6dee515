package ingest

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"strings"
)

// extractDocx reads the text of a word-processing document. A .docx file is
// a zip archive whose word/document.xml holds paragraphs of text runs; no
// third-party loader is needed for plain text extraction.
func extractDocx(filePath string) ([]string, error) {
	archive, err := zip.OpenReader(filePath)
	if err != nil {
		return nil, err
	}
	defer archive.Close()

	for _, file := range archive.File {
		if file.Name != "word/document.xml" {
			continue
		}
		rc, err := file.Open()
		if err != nil {
			return nil, err
		}
		defer rc.Close()
		return docxParagraphs(rc)
	}

	return nil, fmt.Errorf("%s: no word/document.xml in archive", filePath)
}

// docxParagraphs streams the document XML, collecting <w:t> run text and
// emitting one segment per <w:p> paragraph.
func docxParagraphs(r io.Reader) ([]string, error) {
	decoder := xml.NewDecoder(r)

	var (
		segments  []string
		paragraph strings.Builder
		inText    bool
	)

	flush := func() {
		if text := strings.TrimSpace(paragraph.String()); text != "" {
			segments = append(segments, text)
		}
		paragraph.Reset()
	}

	for {
		token, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}

		switch t := token.(type) {
		case xml.StartElement:
			if t.Name.Local == "t" {
				inText = true
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				flush()
			}
		case xml.CharData:
			if inText {
				paragraph.Write(t)
			}
		}
	}
	flush()

	return segments, nil
}
