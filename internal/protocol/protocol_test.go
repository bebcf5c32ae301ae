package protocol

import (
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	data, err := Encode(CmdTagGet, &TagGetRequest{Name: "bot:latest"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	env, payload, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Command != CmdTagGet {
		t.Errorf("command = %q, want %q", env.Command, CmdTagGet)
	}

	req, err := DecodePayload[TagGetRequest](payload)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if req.Name != "bot:latest" {
		t.Errorf("name = %q, want bot:latest", req.Name)
	}
}

func TestEncodeNilPayload(t *testing.T) {
	data, err := Encode(CmdStatus, nil)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	env, payload, err := Decode(data)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Command != CmdStatus {
		t.Errorf("command = %q", env.Command)
	}
	if len(payload) != 0 {
		t.Errorf("payload = %q, want empty", payload)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"not json", "not json at all"},
		{"missing command", `{"payload":{}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, _, err := Decode([]byte(tt.input)); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestDecodePayloadMissing(t *testing.T) {
	if _, err := DecodePayload[TagGetRequest](nil); err == nil {
		t.Fatal("expected error for missing payload")
	}
	if _, err := DecodePayload[TagGetRequest]([]byte("{broken")); err == nil {
		t.Fatal("expected error for malformed payload")
	}
}

func TestDecodePayloadPaginated(t *testing.T) {
	raw := []byte(`{"skip":5,"limit":2,"total":9,"data":[{"name":"a:1"},{"name":"b:2"}]}`)

	page, err := DecodePayload[Paginated[TagRecord]](raw)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if page.Total != 9 || page.Skip != 5 || page.Limit != 2 {
		t.Errorf("page = %+v", page)
	}
	if len(page.Data) != 2 || page.Data[1].Name != "b:2" {
		t.Errorf("data = %+v", page.Data)
	}
}

func TestEnvelopeIsSingleLine(t *testing.T) {
	data, err := Encode(CmdError, &ErrorResult{Message: "first\nsecond"})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if strings.ContainsRune(string(data), '\n') {
		t.Fatal("encoded envelope must not contain raw newlines")
	}
}
