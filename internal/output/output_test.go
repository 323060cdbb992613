package output

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/chrissnell/mesonet-exporter/internal/aggregate"
	"go.uber.org/multierr"
)

func f(v float64) *float64 { return &v }
func s(v string) *string   { return &v }

func TestFormatValue(t *testing.T) {
	tests := []struct {
		name string
		in   *float64
		want string
	}{
		{name: "nil", in: nil, want: NoData},
		{name: "simple", in: f(6.5), want: "6.5"},
		{name: "integer", in: f(12), want: "12"},
		{name: "float noise", in: f(0.1 + 0.2), want: "0.3"},
		{name: "negative", in: f(-101), want: "-101"},
		{name: "negative zero", in: f(-0.0000001), want: "0"},
		{name: "rounded", in: f(2.1234567), want: "2.123457"},
		{name: "large", in: f(1e20), want: "100000000000000000000"},
		{name: "infinite", in: f(math.Inf(1)), want: NoData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := FormatValue(tt.in); got != tt.want {
				t.Errorf("FormatValue() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatValueVeryLarge(t *testing.T) {
	got := FormatValue(f(1e305))
	if len(got) != 306 || !strings.HasPrefix(got, "100000000000000") {
		t.Errorf("FormatValue(1e305) = %q, want a 306 digit integer", got)
	}
	if strings.ContainsAny(got, "eE+.") || strings.Contains(got, "Inf") {
		t.Errorf("FormatValue(1e305) = %q, want plain digits", got)
	}
}

func TestNewDocumentSentinels(t *testing.T) {
	set := aggregate.MetricSet{
		"0115": {Value: f(21.5), Timestamp: s("2025-03-02T11:55:00Z")},
		"0119": {Timestamp: s("2025-03-01T01:00:00Z")},
		"0520": aggregate.NoData,
	}

	doc := NewDocument(set)
	want := Document{
		"0115": {Value: "21.5", Timestamp: "2025-03-02T11:55:00Z"},
		"0119": {Value: NoData, Timestamp: "2025-03-01T01:00:00Z"},
		"0520": {Value: NoData, Timestamp: NoTimestamp},
	}
	for k, v := range want {
		if doc[k] != v {
			t.Errorf("doc[%s] = %+v, want %+v", k, doc[k], v)
		}
	}
}

func TestWindDocumentShape(t *testing.T) {
	lat := 21.3
	doc := NewWindDocument(map[string]aggregate.WindRecord{
		"0115": {Direction: f(270), Speed: f(4.5), Timestamp: s("t"), Lat: &lat},
	})

	data, err := Encode(doc)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}

	var decoded map[string]map[string]any
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatal(err)
	}
	cell := decoded["0115"]
	if cell["value_WDrs"] != "270" || cell["value_WS"] != "4.5" || cell["timestamp"] != "t" {
		t.Errorf("cell = %v", cell)
	}
	if cell["lat"] != 21.3 {
		t.Errorf("lat = %v, want 21.3", cell["lat"])
	}
	if v, ok := cell["lon"]; !ok || v != nil {
		t.Errorf("lon = %v (present %v), want null", v, ok)
	}
}

func TestWriterAtomicReplace(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, nil)
	if err != nil {
		t.Fatal(err)
	}

	first := Document{"0115": {Value: "1", Timestamp: "a"}}
	second := Document{"0115": {Value: "2", Timestamp: "b"}}

	if err := w.Write("BattVolt", first); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := w.Write("BattVolt", second); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "BattVolt.json"))
	if err != nil {
		t.Fatal(err)
	}
	var got Document
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatal(err)
	}
	if got["0115"].Value != "2" {
		t.Errorf("value = %q, want 2", got["0115"].Value)
	}

	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if e.Name() != "BattVolt.json" {
			t.Errorf("temp file left behind: %s", e.Name())
		}
	}
	info, err := os.Stat(filepath.Join(dir, "BattVolt.json"))
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm()&0o044 == 0 {
		t.Errorf("mode = %v, want world readable", info.Mode().Perm())
	}
}

func TestWriteIsDeterministic(t *testing.T) {
	dir := t.TempDir()
	w, _ := NewWriter(dir, nil)

	doc := Document{
		"0602": {Value: "3", Timestamp: "c"},
		"0115": {Value: "1", Timestamp: "a"},
		"0287": {Value: "2", Timestamp: "b"},
	}

	if err := w.Write("Tair_1_Avg", doc); err != nil {
		t.Fatal(err)
	}
	first, _ := os.ReadFile(w.Path("Tair_1_Avg"))

	if err := w.Write("Tair_1_Avg", doc); err != nil {
		t.Fatal(err)
	}
	second, _ := os.ReadFile(w.Path("Tair_1_Avg"))

	if string(first) != string(second) {
		t.Errorf("output differs between identical writes")
	}
	if !strings.Contains(string(first), "\n    \"0115\": {") {
		t.Errorf("unexpected layout:\n%s", first)
	}
	if strings.Index(string(first), "0115") > strings.Index(string(first), "0602") {
		t.Errorf("keys are not sorted:\n%s", first)
	}
}

func TestWriteAllCombinesErrors(t *testing.T) {
	dir := t.TempDir()
	w, _ := NewWriter(dir, nil)

	docs := map[string]any{
		"good":    Document{},
		"bad/one": Document{},
		"bad/two": Document{},
	}

	names, err := w.WriteAll(docs)
	if len(names) != 1 || names[0] != "good" {
		t.Errorf("names = %v, want [good]", names)
	}
	if got := len(multierr.Errors(err)); got != 2 {
		t.Errorf("combined errors = %d (%v), want 2", got, err)
	}
}
