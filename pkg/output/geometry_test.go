package output

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/iwvelando/cone-expert/internal/calculator"
	"github.com/iwvelando/cone-expert/pkg/cone"
	"github.com/iwvelando/cone-expert/pkg/i18n"
	"github.com/iwvelando/cone-expert/pkg/units"
)

func TestWriteMachining(t *testing.T) {
	m := calculator.MachiningOutcome{
		SupportAngle: cone.Value(5.71),
		CuttingSpeed: cone.Value(157.0796),
	}

	var pretty bytes.Buffer
	if err := WriteMachining(&pretty, "pretty", i18n.Lookup("en"), m); err != nil {
		t.Fatalf("WriteMachining(pretty) error = %v", err)
	}
	want := "Support angle: 5.71°\nCutting speed: 157.08 m/min\n"
	if pretty.String() != want {
		t.Errorf("pretty output = %q, expected %q", pretty.String(), want)
	}

	var csvBuf bytes.Buffer
	if err := WriteMachining(&csvBuf, "csv", nil, m); err != nil {
		t.Fatalf("WriteMachining(csv) error = %v", err)
	}
	records, err := csv.NewReader(&csvBuf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}
	if len(records) != 2 || records[1][0] != "5.71" || records[1][1] != "157.08" || records[1][2] != "" {
		t.Errorf("unexpected CSV records: %v", records)
	}

	var jsonBuf bytes.Buffer
	if err := WriteMachining(&jsonBuf, "json", nil, m); err != nil {
		t.Fatalf("WriteMachining(json) error = %v", err)
	}
	var decoded map[string]float64
	if err := json.Unmarshal(jsonBuf.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if _, ok := decoded["feedPerMinute"]; ok {
		t.Error("did not expect feedPerMinute in JSON")
	}
}

func TestWriteProfile(t *testing.T) {
	c := cone.Cone{LargeDiameter: 50, SmallDiameter: 30, Length: 100}
	outline, err := cone.Outline(c)
	if err != nil {
		t.Fatalf("Outline() error = %v", err)
	}
	rings, err := cone.Rings(c, 4)
	if err != nil {
		t.Fatalf("Rings() error = %v", err)
	}

	var pretty bytes.Buffer
	if err := WriteProfile(&pretty, "pretty", units.Millimeter, outline, nil); err != nil {
		t.Fatalf("WriteProfile(pretty) error = %v", err)
	}
	lines := strings.Split(strings.TrimSpace(pretty.String()), "\n")
	if len(lines) != 5 || lines[0] != "--- Outline (mm) ---" || lines[1] != "(0.000, 25.000)" || lines[4] != "(0.000, -25.000)" {
		t.Errorf("unexpected pretty profile:\n%s", pretty.String())
	}

	var csvBuf bytes.Buffer
	if err := WriteProfile(&csvBuf, "csv", units.Millimeter, outline, rings); err != nil {
		t.Fatalf("WriteProfile(csv) error = %v", err)
	}
	records, err := csv.NewReader(&csvBuf).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse CSV: %v", err)
	}
	if len(records) != 1+len(outline)+len(rings) {
		t.Errorf("expected %d records, got %d", 1+len(outline)+len(rings), len(records))
	}
	if records[len(records)-1][0] != "ring" || records[len(records)-1][3] != "100.000" {
		t.Errorf("last ring row = %v", records[len(records)-1])
	}

	var jsonBuf bytes.Buffer
	if err := WriteProfile(&jsonBuf, "json", units.Inch, outline, rings); err != nil {
		t.Fatalf("WriteProfile(json) error = %v", err)
	}
	var view ProfileView
	if err := json.Unmarshal(jsonBuf.Bytes(), &view); err != nil {
		t.Fatalf("failed to decode JSON: %v", err)
	}
	if view.Unit != "in" || len(view.Outline) != 4 || len(view.Rings) != len(rings) {
		t.Errorf("unexpected profile view: %+v", view)
	}
}
