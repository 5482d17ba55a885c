package model

import (
	"testing"
	"time"
)

func TestFieldKeyTypes(t *testing.T) {
	for _, tc := range []struct {
		key  FieldKey
		want FieldType
	}{
		{FieldSeverity, FieldEnumStatus},
		{FieldPriority, FieldEnumStatus},
		{FieldCusInt01, FieldEnum},
		{FieldCusInt03, FieldEnumMulti},
		{FieldCusDbl01, FieldDecimal},
		{FieldCusStr02, FieldFreeText},
		{FieldCusTim01, FieldDate},
	} {
		if got := tc.key.Type(); got != tc.want {
			t.Errorf("Type(%q) = %v, want %v", tc.key, got, tc.want)
		}
	}
	if FieldKey("nope").IsValid() {
		t.Error("unknown key should not be valid")
	}
	if !FieldSeverity.Type().IsEnumerated() {
		t.Error("severity should be enumerated")
	}
	if FieldCusDbl01.Type().IsEnumerated() {
		t.Error("decimal slot should not be enumerated")
	}
}

func TestFieldOptionRank(t *testing.T) {
	f := &Field{
		Key:   FieldSeverity,
		Label: "Severity",
		Options: []Option{
			{Key: 3, Label: "low"},
			{Key: 7, Label: "medium"},
			{Key: 5, Label: "high"},
		},
	}
	if got := f.OptionRank(7); got != 1 {
		t.Errorf("OptionRank(7) = %d, want 1", got)
	}
	if got := f.OptionRank(99); got != -1 {
		t.Errorf("OptionRank(99) = %d, want -1", got)
	}
	if got := f.OptionLabel(5); got != "high" {
		t.Errorf("OptionLabel(5) = %q, want %q", got, "high")
	}
	if f.HasOption(99) {
		t.Error("HasOption(99) should be false")
	}
}

func TestItemValueAccessors(t *testing.T) {
	sev := 2
	dbl := 1.5
	ts := time.Date(2020, 3, 1, 0, 0, 0, 0, time.UTC)
	it := &Item{Severity: &sev, CusDbl01: &dbl, CusStr01: "note", CusTim01: &ts}

	if k, ok := it.OptionKey(FieldSeverity); !ok || k != 2 {
		t.Errorf("OptionKey(severity) = %d, %v", k, ok)
	}
	if _, ok := it.OptionKey(FieldPriority); ok {
		t.Error("empty priority slot should report no value")
	}
	if _, ok := it.OptionKey(FieldCusDbl01); ok {
		t.Error("decimal slot is not an option slot")
	}
	if got := it.Value(FieldCusDbl01); got != 1.5 {
		t.Errorf("Value(cusDbl01) = %v, want 1.5", got)
	}
	if got := it.Value(FieldCusStr01); got != "note" {
		t.Errorf("Value(cusStr01) = %v", got)
	}
	if got := it.Value(FieldCusTim01); got != ts {
		t.Errorf("Value(cusTim01) = %v", got)
	}
	if got := it.Value(FieldCusTim02); got != nil {
		t.Errorf("Value(cusTim02) = %v, want nil", got)
	}
}

func TestParseRefID(t *testing.T) {
	r, err := ParseRefID("WEB-42")
	if err != nil {
		t.Fatalf("ParseRefID: %v", err)
	}
	if r.PrefixCode != "WEB" || r.SeqNum != 42 {
		t.Errorf("ParseRefID = %+v", r)
	}
	if r.String() != "WEB-42" {
		t.Errorf("String() = %q", r.String())
	}

	// Prefix codes themselves may contain a dash.
	r, err = ParseRefID("WEB-UI-7")
	if err != nil {
		t.Fatalf("ParseRefID: %v", err)
	}
	if r.PrefixCode != "WEB-UI" || r.SeqNum != 7 {
		t.Errorf("ParseRefID = %+v", r)
	}

	for _, bad := range []string{"", "WEB", "WEB-", "-42", "WEB-abc", "WEB-0", "WEB--3"} {
		if _, err := ParseRefID(bad); err == nil {
			t.Errorf("ParseRefID(%q) should fail", bad)
		}
	}
}

func TestWorkspaceSchemaRoundTrip(t *testing.T) {
	w := &Workspace{
		ID:         1,
		PrefixCode: "WEB",
		Name:       "Website",
		Fields: []*Field{
			{Key: FieldSeverity, Label: "Severity", Options: []Option{{Key: 1, Label: "low"}, {Key: 2, Label: "high"}}},
			{Key: FieldCusStr01, Label: "Component"},
		},
		Statuses: []Option{{Key: StatusOpen, Label: "Open"}, {Key: 2, Label: "Closed"}},
	}

	raw, err := w.MarshalSchema()
	if err != nil {
		t.Fatalf("MarshalSchema: %v", err)
	}

	var got Workspace
	if err := got.UnmarshalSchema(raw); err != nil {
		t.Fatalf("UnmarshalSchema: %v", err)
	}
	if len(got.Fields) != 2 {
		t.Fatalf("got %d fields, want 2", len(got.Fields))
	}
	if got.Fields[0].Key != FieldSeverity || len(got.Fields[0].Options) != 2 {
		t.Errorf("severity schema lost: %+v", got.Fields[0])
	}
	if got.Field(FieldCusStr01) == nil {
		t.Error("Field(cusStr01) should resolve")
	}
	if got.Field(FieldCusTim01) != nil {
		t.Error("Field(cusTim01) should be nil")
	}
	if got.StatusLabel(2) != "Closed" {
		t.Errorf("StatusLabel(2) = %q", got.StatusLabel(2))
	}
	if got.StatusLabel(9) != "" {
		t.Errorf("StatusLabel(9) = %q", got.StatusLabel(9))
	}
}
