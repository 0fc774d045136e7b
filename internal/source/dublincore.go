package source

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/geodoc-io/geodoc/internal/schema"
	gderrors "github.com/geodoc-io/geodoc/pkg/errors"
)

// ParseDublinCore extracts a record from a Dublin-Core metadata document.
// Elements are matched by local name at any depth, so the surrounding
// envelope (OAI-PMH or otherwise) does not matter. Repeated contributors
// and subjects are joined with spaces; the bounding box comes from the OWS
// corner elements ("<x> <y>" per corner, lower = west/south, upper =
// east/north) and is simply left out when either corner is missing.
func ParseDublinCore(r io.Reader) (schema.Record, error) {
	var (
		contributors []string
		subjects     []string
		fields       = map[string]string{}
		lowerCorner  string
		upperCorner  string
	)

	decoder := xml.NewDecoder(r)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return schema.Record{}, fmt.Errorf("%w: parsing metadata xml: %v", gderrors.ErrIOFailure, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "identifier":
			fields["path"], err = elementText(decoder, &start)
		case "creator":
			fields["autor"], err = elementText(decoder, &start)
		case "contributor":
			var text string
			text, err = elementText(decoder, &start)
			if text != "" {
				contributors = append(contributors, text)
			}
		case "publisher":
			fields["departamento"], err = elementText(decoder, &start)
		case "title":
			fields["titulo"], err = elementText(decoder, &start)
		case "description":
			fields["descripcion"], err = elementText(decoder, &start)
		case "subject":
			var text string
			text, err = elementText(decoder, &start)
			if text != "" {
				subjects = append(subjects, text)
			}
		case "date":
			var text string
			text, err = elementText(decoder, &start)
			fields["anyo"] = yearOf(text)
		case "LowerCorner":
			lowerCorner, err = elementText(decoder, &start)
		case "UpperCorner":
			upperCorner, err = elementText(decoder, &start)
		}
		if err != nil {
			return schema.Record{}, fmt.Errorf("%w: parsing metadata xml: %v", gderrors.ErrIOFailure, err)
		}
	}

	fields["director"] = strings.Join(contributors, " ")
	fields["subject"] = strings.Join(subjects, " ")

	if west, south, ok := splitCorner(lowerCorner); ok {
		if east, north, ok := splitCorner(upperCorner); ok {
			fields["west"] = west
			fields["south"] = south
			fields["east"] = east
			fields["north"] = north
		}
	}
	return schema.Record{Fields: fields}, nil
}

// elementText consumes the element opened by start and returns its trimmed
// character data.
func elementText(decoder *xml.Decoder, start *xml.StartElement) (string, error) {
	var text string
	if err := decoder.DecodeElement(&text, start); err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// yearOf reduces a date value to its leading year, the only part indexed.
func yearOf(date string) string {
	date = strings.TrimSpace(date)
	if len(date) >= 4 {
		if _, err := strconv.Atoi(date[:4]); err == nil {
			return date[:4]
		}
	}
	return ""
}

// splitCorner parses an OWS corner value "x y" into its two coordinates.
func splitCorner(corner string) (x, y string, ok bool) {
	parts := strings.Fields(corner)
	if len(parts) != 2 {
		return "", "", false
	}
	for _, p := range parts {
		if _, err := strconv.ParseFloat(p, 64); err != nil {
			return "", "", false
		}
	}
	return parts[0], parts[1], true
}
