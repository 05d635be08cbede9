package passenger

import (
	"reflect"
	"testing"
)

func TestFromKeyValue(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want Fields
	}{
		{
			name: "comma separated keys",
			in:   "name: Jane Doe, email: j@x.com, phone: 98765 43210",
			want: Fields{FullName: "Jane Doe", Email: "j@x.com", Phone: "9876543210"},
		},
		{
			name: "keys without commas",
			in:   "full_name : Jane Doe email: j@x.com phone: (987) 654-3210",
			want: Fields{FullName: "Jane Doe", Email: "j@x.com", Phone: "9876543210"},
		},
		{
			name: "bare email and phone",
			in:   "you can reach me at j@x.com or 9876543210",
			want: Fields{Email: "j@x.com", Phone: "9876543210"},
		},
		{
			name: "short phone rejected",
			in:   "phone: 12345",
			want: Fields{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FromKeyValue(tc.in); got != tc.want {
				t.Fatalf("FromKeyValue(%q) = %+v, want %+v", tc.in, got, tc.want)
			}
		})
	}
}

func TestFromFreeForm(t *testing.T) {
	got := FromFreeForm("Jane Doe j@x.com 9876543210")
	want := Fields{FullName: "Jane Doe", Email: "j@x.com", Phone: "9876543210"}
	if got != want {
		t.Fatalf("FromFreeForm() = %+v, want %+v", got, want)
	}

	if got := FromFreeForm("Jane Doe, j@x.com, 9876543210"); got != want {
		t.Fatalf("FromFreeForm(comma) = %+v, want %+v", got, want)
	}

	// Ordinary sentences without contact data must not become a name.
	if got := FromFreeForm("flights from hyderabad to vizag"); !got.IsEmpty() {
		t.Fatalf("FromFreeForm(sentence) = %+v, want empty", got)
	}
	if got := FromFreeForm("Jane j@x.com"); !got.IsEmpty() {
		t.Fatalf("FromFreeForm(two tokens) = %+v, want empty", got)
	}

	sentences := map[string]Fields{
		"my phone is 9876543210":                   {Phone: "9876543210"},
		"you can reach me at j@x.com":              {Email: "j@x.com"},
		"here is my number, 98765 43210 thanks":    {},
		"Email is j@x.com and phone is 9876543210": {Email: "j@x.com", Phone: "9876543210"},
	}
	for in, want := range sentences {
		if got := FromFreeForm(in); got != want {
			t.Fatalf("FromFreeForm(%q) = %+v, want %+v", in, got, want)
		}
	}
}

func TestFromConfirmation(t *testing.T) {
	text := "Perfect! I have all the details:\n- Name: Jane Doe\n- Email: j@x.com\n- Phone: 98765-43210\n\nTo confirm payment, please reply 'proceed'."
	got, ok := FromConfirmation(text)
	if !ok {
		t.Fatalf("FromConfirmation() ok = false, want true")
	}
	want := Fields{FullName: "Jane Doe", Email: "j@x.com", Phone: "9876543210"}
	if got != want {
		t.Fatalf("FromConfirmation() = %+v, want %+v", got, want)
	}
	if _, ok := FromConfirmation("I found 3 flights"); ok {
		t.Fatalf("FromConfirmation(unrelated) ok = true, want false")
	}
}

func TestFieldsMissingAndMerge(t *testing.T) {
	f := Fields{Email: "j@x.com"}
	if got := f.Missing(); !reflect.DeepEqual(got, []string{KeyFullName, KeyPhone}) {
		t.Fatalf("Missing() = %v, want [full_name phone]", got)
	}
	f.FillFrom(Fields{FullName: "Jane", Email: "other@x.com"})
	if f.Email != "j@x.com" || f.FullName != "Jane" {
		t.Fatalf("FillFrom() = %+v, want existing email kept and name filled", f)
	}
	f.Overwrite(Fields{Email: "new@x.com"})
	if f.Email != "new@x.com" || f.FullName != "Jane" {
		t.Fatalf("Overwrite() = %+v, want email replaced only", f)
	}
	if f.Complete() {
		t.Fatalf("Complete() = true without phone")
	}
}

func TestLooksStructured(t *testing.T) {
	cases := map[string]bool{
		"name: Jane":                  true,
		"Email : j@x.com":             true,
		"Jane Doe, j@x.com":           true,
		"Jane Doe j@x.com 9876543210": false,
		"search flights":              false,
	}
	for in, want := range cases {
		if got := LooksStructured(in); got != want {
			t.Fatalf("LooksStructured(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestValidation(t *testing.T) {
	if !ValidEmail("jane.doe+trip@example.co.in") || ValidEmail("jane@") {
		t.Fatalf("ValidEmail mismatch")
	}
	if !ValidPhone("+91 98765-43210") || ValidPhone("12345") || ValidPhone("1234567890123456") {
		t.Fatalf("ValidPhone mismatch")
	}
}
