package scripture

import "strings"

// Philosophy is a Vedantic school of interpretation.
type Philosophy string

const (
	Advaita         Philosophy = "adv"
	Dvaita          Philosophy = "dva"
	Vishishtadvaita Philosophy = "vis"
)

type philosophyEntry struct {
	code    Philosophy
	display string
}

var philosophies = []philosophyEntry{
	{Advaita, "Advaita"},
	{Dvaita, "Dvaita"},
	{Vishishtadvaita, "Vishishtadvaita"},
}

// Philosophies returns every school in declared order.
func Philosophies() []Philosophy {
	out := make([]Philosophy, 0, len(philosophies))
	for _, e := range philosophies {
		out = append(out, e.code)
	}
	return out
}

func (p Philosophy) String() string { return string(p) }

// DisplayName returns the school's conventional name.
func (p Philosophy) DisplayName() string {
	for _, e := range philosophies {
		if e.code == p {
			return e.display
		}
	}
	return strings.ToUpper(string(p))
}
