package validation

import "testing"

func TestValidators(t *testing.T) {
	tests := []struct {
		name  string
		run   func(Violations)
		field string
		want  string
	}{
		{"required blank", func(v Violations) { Required("name", "  ", v) }, "name", "required"},
		{"required ok", func(v Violations) { Required("name", "Acme", v) }, "name", ""},
		{"positive zero", func(v Violations) { PositiveFloat("rate", 0, v) }, "rate", "must_be_positive"},
		{"non negative zero", func(v Violations) { NonNegativeFloat("hours", 0, v) }, "hours", ""},
		{"non negative below", func(v Violations) { NonNegativeFloat("hours", -1, v) }, "hours", "must_not_be_negative"},
		{"range int high", func(v Violations) { RangeInt("completion", 101, 0, 100, v) }, "completion", "out_of_range"},
		{"range float ok", func(v Violations) { RangeFloat("x", 1.5, 1, 2, v) }, "x", ""},
		{"one of bad", func(v Violations) { OneOf("status", "lost", []string{"pending", "accepted"}, v) }, "status", "invalid_choice"},
		{"one of empty", func(v Violations) { OneOf("status", "", []string{"pending"}, v) }, "status", ""},
		{"email bad", func(v Violations) { Email("email", "nope", v) }, "email", "invalid_email"},
		{"email display name", func(v Violations) { Email("email", "Bob <bob@x.io>", v) }, "email", "invalid_email"},
		{"email ok", func(v Violations) { Email("email", "bob@x.io", v) }, "email", ""},
		{"max len", func(v Violations) { MaxLen("name", "abcdef", 5, v) }, "name", "too_long"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Violations{}
			tt.run(v)
			if got := v[tt.field]; got != tt.want {
				t.Fatalf("%s: got %q want %q", tt.field, got, tt.want)
			}
		})
	}
}

func TestMergeKeepsExisting(t *testing.T) {
	v := Violations{"a": "required"}
	v.Merge(Violations{"a": "too_long", "b": "invalid_choice"})
	if v["a"] != "required" || v["b"] != "invalid_choice" {
		t.Fatalf("unexpected merge result: %#v", v)
	}
	if v.Empty() {
		t.Fatalf("expected violations")
	}
}
