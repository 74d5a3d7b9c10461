package payloadschema

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestValidateEventPayload_Valid(t *testing.T) {
	payload := json.RawMessage(`{
		"payload_version":"v1",
		"source":"grieghallen",
		"title":"Griegkonsert med Bergen Filharmoniske",
		"venue_name":"Grieghallen",
		"date_start":"2026-09-12",
		"source_url":"https://www.grieghallen.no/program/griegkonsert",
		"ticket_url":"https://www.grieghallen.no/billetter/griegkonsert",
		"image_url":"https://www.grieghallen.no/media/grieg.jpg",
		"price":"450 kr",
		"description":"Bergen Filharmoniske Orkester spiller Grieg.",
		"category":"konsert"
	}`)

	event, err := ValidateEventPayload(payload)
	if err != nil {
		t.Fatalf("expected payload to be valid, got error: %v", err)
	}

	if event.Source != "grieghallen" {
		t.Fatalf("expected source=grieghallen, got %q", event.Source)
	}
	if event.PayloadVersion != "v1" {
		t.Fatalf("expected payload_version=v1, got %q", event.PayloadVersion)
	}
	if event.TicketURL == nil || *event.TicketURL == "" {
		t.Fatalf("expected ticket_url to survive decoding")
	}
}

func TestValidateEventPayload_MissingRequired(t *testing.T) {
	payload := json.RawMessage(`{
		"payload_version":"v1",
		"source":"usf",
		"title":"Jazzkveld",
		"date_start":"2026-10-01",
		"source_url":"https://www.usf.no/program/jazzkveld"
	}`)

	_, err := ValidateEventPayload(payload)
	if err == nil {
		t.Fatalf("expected error for missing venue_name")
	}
	if !strings.Contains(err.Error(), "venue_name") {
		t.Fatalf("expected venue_name in error, got: %v", err)
	}
}

func TestValidateEventPayload_WrongVersion(t *testing.T) {
	payload := json.RawMessage(`{
		"payload_version":"v2",
		"source":"usf",
		"title":"Jazzkveld",
		"venue_name":"USF Verftet",
		"date_start":"2026-10-01",
		"source_url":"https://www.usf.no/program/jazzkveld"
	}`)

	_, err := ValidateEventPayload(payload)
	if err == nil {
		t.Fatalf("expected error for unsupported payload_version")
	}
}

func TestValidateEventPayload_RejectsUnknownFields(t *testing.T) {
	payload := json.RawMessage(`{
		"payload_version":"v1",
		"source":"usf",
		"title":"Jazzkveld",
		"venue_name":"USF Verftet",
		"date_start":"2026-10-01",
		"source_url":"https://www.usf.no/program/jazzkveld",
		"surprise":"field"
	}`)

	_, err := ValidateEventPayload(payload)
	if err == nil {
		t.Fatalf("expected error for unknown field")
	}
}

func TestValidateEventPayload_TrailingContent(t *testing.T) {
	payload := json.RawMessage(`{
		"payload_version":"v1",
		"source":"usf",
		"title":"Jazzkveld",
		"venue_name":"USF Verftet",
		"date_start":"2026-10-01",
		"source_url":"https://www.usf.no/program/jazzkveld"
	}{}`)

	_, err := ValidateEventPayload(payload)
	if err == nil {
		t.Fatalf("expected error for trailing content")
	}
}

func TestValidateEventPayload_BadTicketURL(t *testing.T) {
	payload := json.RawMessage(`{
		"payload_version":"v1",
		"source":"usf",
		"title":"Jazzkveld",
		"venue_name":"USF Verftet",
		"date_start":"2026-10-01",
		"source_url":"https://www.usf.no/program/jazzkveld",
		"ticket_url":"   "
	}`)

	_, err := ValidateEventPayload(payload)
	if err == nil {
		t.Fatalf("expected error for blank ticket_url")
	}
}
