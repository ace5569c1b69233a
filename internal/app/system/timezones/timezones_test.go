package timezones

import "testing"

func TestLoad(t *testing.T) {
	err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
}

func TestAll(t *testing.T) {
	zones, err := All()
	if err != nil {
		t.Fatalf("All() error = %v", err)
	}
	if len(zones) == 0 {
		t.Error("All() returned empty zones list")
	}

	for _, z := range zones {
		if z.ID == "" {
			t.Error("Zone has empty ID")
		}
		if z.Label == "" {
			t.Errorf("Zone %q has empty Label", z.ID)
		}
	}
}

func TestLabel(t *testing.T) {
	if err := Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		name   string
		id     string
		wantID bool // if true, expect the ID back (not found case)
	}{
		{"known timezone", "America/New_York", false},
		{"known timezone UTC", "UTC", false},
		{"unknown timezone", "Invalid/Timezone", true},
		{"empty string", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Label(tt.id)
			if tt.wantID && got != tt.id {
				t.Errorf("Label(%q) = %q, want %q (ID returned for unknown)", tt.id, got, tt.id)
			}
			if !tt.wantID && got == "" {
				t.Errorf("Label(%q) returned empty string for known timezone", tt.id)
			}
		})
	}
}

func TestValid(t *testing.T) {
	if err := Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	tests := []struct {
		id   string
		want bool
	}{
		{"America/New_York", true},
		{"UTC", true},
		{"Europe/London", true},
		{"Invalid/Timezone", false},
		{"", false},
		{"Not_A_Zone", false},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			got := Valid(tt.id)
			if got != tt.want {
				t.Errorf("Valid(%q) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}
}
