package locale

import "testing"

func TestNormalize(t *testing.T) {
	cases := map[string]string{
		"pt-BR": Portuguese,
		"pt_br": Portuguese,
		"PT":    Portuguese,
		"en-US": English,
		"":      English,
		"fr":    English,
	}
	for input, want := range cases {
		if got := Normalize(input); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", input, got, want)
		}
	}
}

func TestCatalogsAreComplete(t *testing.T) {
	for _, tag := range Supported() {
		c := For(tag)
		for name, value := range map[string]string{
			"Required":       c.Required,
			"InvalidEmail":   c.InvalidEmail,
			"InvalidPhone":   c.InvalidPhone,
			"Sending":        c.Sending,
			"Sent":           c.Sent,
			"FixErrors":      c.FixErrors,
			"GenericFailure": c.GenericFailure,
			"NetworkFailure": c.NetworkFailure,
			"NotConfigured":  c.NotConfigured,
			"InFlight":       c.InFlight,
			"RateLimited":    c.RateLimited,
		} {
			if value == "" {
				t.Errorf("%s: %s is empty", tag, name)
			}
		}
	}
}

func TestCatalog_LengthMessages(t *testing.T) {
	c := For(English)
	if got := c.TooLongFor(10); got != "Must be at most 10 characters" {
		t.Fatalf("unexpected message %q", got)
	}
}
