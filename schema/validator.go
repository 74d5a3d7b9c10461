// Package payloadschema validates candidate event payloads submitted by
// scrapers before they enter the ingest pipeline.
package payloadschema

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed event.schema.json
var eventSchemaJSON string

// EventPayload is the wire shape a scraper submits for a single event.
// Dates stay as strings here; the ingest layer owns date parsing.
type EventPayload struct {
	PayloadVersion string  `json:"payload_version"`
	Source         string  `json:"source"`
	Title          string  `json:"title"`
	VenueName      string  `json:"venue_name"`
	DateStart      string  `json:"date_start"`
	DateEnd        *string `json:"date_end,omitempty"`
	SourceURL      string  `json:"source_url"`
	TicketURL      *string `json:"ticket_url,omitempty"`
	ImageURL       *string `json:"image_url,omitempty"`
	Price          *string `json:"price,omitempty"`
	Description    *string `json:"description,omitempty"`
	Category       *string `json:"category,omitempty"`
	Bydel          *string `json:"bydel,omitempty"`
}

var (
	compileOnce       sync.Once
	compiledSchema    *jsonschema.Schema
	compiledSchemaErr error
)

// ValidateEventPayload checks a raw scraper payload against the event
// schema and returns the decoded payload when it is well formed.
func ValidateEventPayload(payload json.RawMessage) (*EventPayload, error) {
	value, err := decodeStrictJSON(payload)
	if err != nil {
		return nil, fmt.Errorf("decode payload JSON: %w", err)
	}

	schema, err := loadSchema()
	if err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}

	if err := schema.Validate(value); err != nil {
		return nil, fmt.Errorf("schema validation failed: %w", err)
	}

	normalized, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("normalize payload JSON: %w", err)
	}

	var event EventPayload
	if err := json.Unmarshal(normalized, &event); err != nil {
		return nil, fmt.Errorf("unmarshal payload: %w", err)
	}

	if err := validateSemantics(&event); err != nil {
		return nil, err
	}

	return &event, nil
}

func loadSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		compiler.AssertFormat = true

		if err := compiler.AddResource("event.schema.json", strings.NewReader(eventSchemaJSON)); err != nil {
			compiledSchemaErr = fmt.Errorf("add schema resource: %w", err)
			return
		}

		schema, err := compiler.Compile("event.schema.json")
		if err != nil {
			compiledSchemaErr = fmt.Errorf("compile schema: %w", err)
			return
		}

		compiledSchema = schema
	})

	if compiledSchemaErr != nil {
		return nil, compiledSchemaErr
	}
	if compiledSchema == nil {
		return nil, fmt.Errorf("schema not initialized")
	}
	return compiledSchema, nil
}

func decodeStrictJSON(raw []byte) (any, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("payload is empty")
	}

	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	if err := decoder.Decode(&struct{}{}); err != io.EOF {
		return nil, fmt.Errorf("payload contains trailing content")
	}

	return value, nil
}

func validateSemantics(event *EventPayload) error {
	if event == nil {
		return fmt.Errorf("payload is nil")
	}

	if strings.TrimSpace(event.Source) == "" {
		return fmt.Errorf("source must not be empty")
	}
	if strings.TrimSpace(event.Title) == "" {
		return fmt.Errorf("title must not be empty")
	}
	if strings.TrimSpace(event.VenueName) == "" {
		return fmt.Errorf("venue_name must not be empty")
	}
	if strings.TrimSpace(event.DateStart) == "" {
		return fmt.Errorf("date_start must not be empty")
	}
	if strings.TrimSpace(event.PayloadVersion) != "v1" {
		return fmt.Errorf("payload_version must be v1")
	}

	if err := validateURI("source_url", event.SourceURL); err != nil {
		return err
	}
	if event.TicketURL != nil {
		if err := validateURI("ticket_url", *event.TicketURL); err != nil {
			return err
		}
	}
	if event.ImageURL != nil {
		if err := validateURI("image_url", *event.ImageURL); err != nil {
			return err
		}
	}

	return nil
}

func validateURI(fieldName, value string) error {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return fmt.Errorf("%s must not be empty", fieldName)
	}
	if _, err := url.ParseRequestURI(trimmed); err != nil {
		return fmt.Errorf("%s is not a valid URI: %w", fieldName, err)
	}
	return nil
}
