package status

import "testing"

func TestMessage_AutoDismiss(t *testing.T) {
	cases := []struct {
		msg  Message
		want bool
	}{
		{Info("sending"), true},
		{Success("sent"), true},
		{Warning("not configured"), true},
		{Error("failed"), false},
	}
	for _, tc := range cases {
		if got := tc.msg.AutoDismiss(); got != tc.want {
			t.Errorf("%s AutoDismiss() = %v, want %v", tc.msg.Kind, got, tc.want)
		}
	}
}

func TestParseKind(t *testing.T) {
	if got := ParseKind(" ERROR "); got != KindError {
		t.Fatalf("expected error kind, got %q", got)
	}
	if got := ParseKind("bogus"); got != KindInfo {
		t.Fatalf("expected info fallback, got %q", got)
	}
}

func TestMessage_IsZero(t *testing.T) {
	if !(Message{Text: "  "}).IsZero() {
		t.Fatalf("blank message should be zero")
	}
	if Info("x").IsZero() {
		t.Fatalf("non-blank message should not be zero")
	}
}
