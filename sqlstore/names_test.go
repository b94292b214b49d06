package sqlstore

import "testing"

func TestSanitizeTableName(t *testing.T) {
	valid := []string{"outbox_events", "public.outbox_events", "OUTBOX_1"}
	for _, name := range valid {
		if _, err := SanitizeTableName(name); err != nil {
			t.Fatalf("expected valid name %q: %v", name, err)
		}
	}

	invalid := []string{"", "outbox;drop", "outbox-1", "schema..outbox", "schema.outbox;", "1outbox"}
	for _, name := range invalid {
		if _, err := SanitizeTableName(name); err == nil {
			t.Fatalf("expected invalid name %q", name)
		}
	}
}
