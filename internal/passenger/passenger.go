// Package passenger extracts and validates the passenger contact fields a
// booking needs: full name, email and phone.
package passenger

import (
	"regexp"
	"strings"
)

// Field keys, shared with the slot vocabulary.
const (
	KeyFullName = "full_name"
	KeyEmail    = "email"
	KeyPhone    = "phone"
)

// Fields is the passenger contact record. It is complete only when all three
// values are non-empty.
type Fields struct {
	FullName string `json:"full_name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
}

func (f Fields) Complete() bool {
	return f.FullName != "" && f.Email != "" && f.Phone != ""
}

func (f Fields) IsEmpty() bool {
	return f.FullName == "" && f.Email == "" && f.Phone == ""
}

// Missing lists the keys that are still empty, in display order.
func (f Fields) Missing() []string {
	var out []string
	if f.FullName == "" {
		out = append(out, KeyFullName)
	}
	if f.Email == "" {
		out = append(out, KeyEmail)
	}
	if f.Phone == "" {
		out = append(out, KeyPhone)
	}
	return out
}

// FillFrom copies values from o into fields that are still empty.
func (f *Fields) FillFrom(o Fields) {
	if f.FullName == "" {
		f.FullName = o.FullName
	}
	if f.Email == "" {
		f.Email = o.Email
	}
	if f.Phone == "" {
		f.Phone = o.Phone
	}
}

// Overwrite replaces fields with every non-empty value in o.
func (f *Fields) Overwrite(o Fields) {
	if o.FullName != "" {
		f.FullName = o.FullName
	}
	if o.Email != "" {
		f.Email = o.Email
	}
	if o.Phone != "" {
		f.Phone = o.Phone
	}
}

var (
	confirmName  = regexp.MustCompile(`(?i)Name:\s*([^\n,]+)`)
	confirmEmail = regexp.MustCompile(`(?i)Email:\s*([^\n,]+)`)
	confirmPhone = regexp.MustCompile(`(?i)Phone:\s*([^\n,]+)`)

	kvName      = regexp.MustCompile(`(?i)\b(?:full[_\s]*name|name)\s*:\s*([^,\n]+)`)
	kvEmail     = regexp.MustCompile(`(?i)\be-?mail\s*:\s*([^\s,\n]+@[^\s,\n]+)`)
	bareEmail   = regexp.MustCompile(`([^\s,\n:]+@[^\s,\n]+)`)
	kvPhone     = regexp.MustCompile(`(?i)\b(?:phone|mobile)\s*:\s*([\d\s\-\(\)+]+)`)
	barePhone   = regexp.MustCompile(`\d{10,15}`)
	nextKey     = regexp.MustCompile(`(?i)\s*\b(?:e-?mail|phone|mobile)\s*:.*$`)
	structured  = regexp.MustCompile(`(?i)\b(?:full[_\s]*name|name|e-?mail|phone|mobile)\s*:`)
	nonDigit    = regexp.MustCompile(`\D`)
	emailFormat = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
)

const confirmationMarker = "Perfect! I have all the details"

// FromConfirmation reads an assistant message that echoed the passenger
// details back ("Name: ..., Email: ..., Phone: ..."). ok is false when text is
// not such a message.
func FromConfirmation(text string) (Fields, bool) {
	if !strings.Contains(text, confirmationMarker) &&
		!(strings.Contains(text, "Name:") && strings.Contains(text, "Email:") && strings.Contains(text, "Phone:")) {
		return Fields{}, false
	}
	var f Fields
	if m := confirmName.FindStringSubmatch(text); m != nil {
		f.FullName = strings.TrimSpace(m[1])
	}
	if m := confirmEmail.FindStringSubmatch(text); m != nil {
		f.Email = strings.TrimSpace(m[1])
	}
	if m := confirmPhone.FindStringSubmatch(text); m != nil {
		f.Phone = DigitsOnly(m[1])
	}
	return f, !f.IsEmpty()
}

// FromKeyValue extracts "field: value" pairs, with a bare email address and a
// bare 10-15 digit run accepted as fallbacks.
func FromKeyValue(text string) Fields {
	var f Fields
	if m := kvName.FindStringSubmatch(text); m != nil {
		f.FullName = cleanName(nextKey.ReplaceAllString(m[1], ""))
	}

	if m := kvEmail.FindStringSubmatch(text); m != nil {
		f.Email = cleanEmail(m[1])
	} else if strings.Contains(text, "@") {
		if m := bareEmail.FindString(text); m != "" {
			f.Email = cleanEmail(m)
		}
	}

	if m := kvPhone.FindStringSubmatch(text); m != nil {
		if digits := DigitsOnly(m[1]); len(digits) >= 10 {
			f.Phone = digits
		}
	} else if m := barePhone.FindString(text); m != "" {
		f.Phone = m
	}
	return f
}

// FromFreeForm reads a bare "Jane Doe jane@x.com 9876543210" message. Tokens
// with @ are the email, tokens carrying 10+ digits the phone, and remaining
// alphabetic tokens form the name. The message must have at least three
// tokens and carry an email or a phone, otherwise nothing is extracted. The
// name is left empty when the leftover words read as a sentence ("my phone
// is ...") rather than a name.
func FromFreeForm(text string) Fields {
	parts := strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == ','
	})
	if len(parts) < 3 {
		return Fields{}
	}

	var (
		f         Fields
		nameParts []string
	)
	for _, part := range parts {
		switch {
		case strings.Contains(part, "@"):
			if f.Email == "" {
				f.Email = cleanEmail(part)
			}
		case len(DigitsOnly(part)) >= 10:
			if f.Phone == "" {
				f.Phone = DigitsOnly(part)
			}
		case hasLetter(part) && !strings.Contains(part, ":"):
			nameParts = append(nameParts, part)
		}
	}
	if f.Email == "" && f.Phone == "" {
		return Fields{}
	}
	if !sentenceLike(nameParts) {
		f.FullName = cleanName(strings.Join(nameParts, " "))
	}
	return f
}

var fillerWords = map[string]bool{
	"a": true, "am": true, "an": true, "and": true, "at": true, "call": true,
	"can": true, "contact": true, "details": true, "e-mail": true, "email": true,
	"for": true, "here": true, "i": true, "i'm": true, "im": true, "is": true,
	"it": true, "it's": true, "mail": true, "me": true, "mobile": true,
	"my": true, "name": true, "number": true, "of": true, "on": true,
	"or": true, "phone": true, "please": true, "reach": true, "the": true,
	"this": true, "to": true, "use": true, "via": true, "with": true,
	"you": true, "your": true,
}

func sentenceLike(words []string) bool {
	for _, w := range words {
		if fillerWords[strings.ToLower(strings.Trim(w, ".;:!?-"))] {
			return true
		}
	}
	return false
}

// FromUserText applies the key-value strategy and then lets the free-form
// strategy fill what is still missing.
func FromUserText(text string) Fields {
	f := FromKeyValue(text)
	if !f.Complete() {
		f.FillFrom(FromFreeForm(text))
	}
	return f
}

// LooksStructured reports whether text resembles a direct answer to the
// details prompt, either "field: value" or a comma list with an email.
func LooksStructured(text string) bool {
	if structured.MatchString(text) {
		return true
	}
	return strings.Contains(text, ",") && strings.Contains(text, "@")
}

// DigitsOnly strips everything but 0-9.
func DigitsOnly(s string) string {
	return nonDigit.ReplaceAllString(s, "")
}

func ValidEmail(s string) bool {
	return emailFormat.MatchString(strings.TrimSpace(s))
}

// ValidPhone accepts 10 to 15 digits once separators are removed.
func ValidPhone(s string) bool {
	n := len(DigitsOnly(s))
	return n >= 10 && n <= 15
}

func cleanName(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	return strings.Trim(s, " .;:-")
}

func cleanEmail(s string) string {
	return strings.Trim(strings.TrimSpace(s), ".,;:()<>")
}

func hasLetter(s string) bool {
	for _, r := range s {
		if r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r > 127 {
			return true
		}
	}
	return false
}
