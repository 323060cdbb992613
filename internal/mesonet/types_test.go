package mesonet

import (
	"encoding/json"
	"testing"
	"time"
)

func TestValueUnmarshal(t *testing.T) {
	tests := []struct {
		in      string
		want    float64
		wantOK  bool
		wantRaw string
	}{
		{in: `1.5`, want: 1.5, wantOK: true, wantRaw: "1.5"},
		{in: `"3.0"`, want: 3.0, wantOK: true, wantRaw: "3.0"},
		{in: `" -2.25 "`, want: -2.25, wantOK: true, wantRaw: " -2.25 "},
		{in: `null`, wantOK: false},
		{in: `"NAN"`, wantOK: false, wantRaw: "NAN"},
		{in: `"n/a"`, wantOK: false, wantRaw: "n/a"},
		{in: `true`, wantOK: false, wantRaw: "true"},
		{in: `{"nested": 1}`, wantOK: false, wantRaw: `{"nested": 1}`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			var v Value
			if err := json.Unmarshal([]byte(tt.in), &v); err != nil {
				t.Fatalf("Unmarshal(%s) error = %v", tt.in, err)
			}
			got, ok := v.Float()
			if ok != tt.wantOK {
				t.Fatalf("Float() ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("Float() = %v, want %v", got, tt.want)
			}
			if v.Raw() != tt.wantRaw {
				t.Errorf("Raw() = %q, want %q", v.Raw(), tt.wantRaw)
			}
		})
	}
}

func TestSampleDecodingToleratesBadValues(t *testing.T) {
	body := `[
		{"station_id": "0115", "variable": "RF_1_Tot300s", "value": 1.0, "timestamp": "2025-03-01T00:05:00Z"},
		{"station_id": "0115", "variable": "RF_1_Tot300s", "value": "oops", "timestamp": "2025-03-01T00:00:00Z"}
	]`

	var samples []Sample
	if err := json.Unmarshal([]byte(body), &samples); err != nil {
		t.Fatalf("Unmarshal error = %v", err)
	}
	if len(samples) != 2 {
		t.Fatalf("len = %d, want 2", len(samples))
	}
	if _, ok := samples[1].Value.Float(); ok {
		t.Errorf("samples[1] value should be invalid")
	}
}

func TestParseTimestamp(t *testing.T) {
	want := time.Date(2025, 3, 1, 10, 15, 0, 0, time.UTC)

	tests := []struct {
		in     string
		wantOK bool
	}{
		{in: "2025-03-01T10:15:00Z", wantOK: true},
		{in: "2025-03-01T00:15:00-10:00", wantOK: true},
		{in: "2025-03-01T10:15:00", wantOK: true},
		{in: "2025-03-01T10:15:00.000000Z", wantOK: true},
		{in: "2025-03-01 10:15:00", wantOK: true},
		{in: "yesterday", wantOK: false},
		{in: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := ParseTimestamp(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParseTimestamp(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if ok && !got.Equal(want) {
				t.Errorf("ParseTimestamp(%q) = %v, want %v", tt.in, got, want)
			}
		})
	}
}
