package utils

import "testing"

func TestSanitizeEmail(t *testing.T) {
	got, err := SanitizeEmail("  Pharmacy@Example.COM ")
	if err != nil {
		t.Fatal(err)
	}
	if got != "pharmacy@example.com" {
		t.Fatalf("got %q", got)
	}

	for _, bad := range []string{"", "no-at-sign", "a@b", "a b@example.com"} {
		if _, err := SanitizeEmail(bad); err == nil {
			t.Errorf("%q should be rejected", bad)
		}
	}
}

func TestSanitizePhone(t *testing.T) {
	got, err := SanitizePhone("009 6777 12345")
	if err != nil {
		t.Fatal(err)
	}
	if got != "+009677712345" {
		t.Fatalf("got %q", got)
	}

	// Optional field: blank passes through empty
	if got, err := SanitizePhone("   "); err != nil || got != "" {
		t.Fatalf("blank phone: got %q, %v", got, err)
	}

	if _, err := SanitizePhone("123"); err == nil {
		t.Error("short phone should be rejected")
	}
}

func TestSanitizeInput(t *testing.T) {
	got := SanitizeInput("  <script>alert(1)</script>\x00  ")
	if got != "&lt;script&gt;alert(1)&lt;/script&gt;" {
		t.Fatalf("got %q", got)
	}
}
