package scheme

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownScheme is returned by Parse for selectors outside the enumeration
var ErrUnknownScheme = errors.New("unknown pronunciation scheme")

// Scheme is a pronunciation scheme selector such as "cla" or "koi1"
type Scheme string

const (
	// Classical is 5th century BCE Attic
	Classical Scheme = "cla"
	// EarlyKoine is 1st century CE Egyptian Koine
	EarlyKoine Scheme = "koi1"
	// LateKoine is 4th century CE Koine
	LateKoine Scheme = "koi2"
	// MiddleByzantine is 10th century CE Byzantine
	MiddleByzantine Scheme = "byz1"
	// LateByzantine is 15th century CE Constantinopolitan
	LateByzantine Scheme = "byz2"
)

// Default is used when no scheme is configured
const Default = Classical

var descriptions = map[Scheme]string{
	Classical:       "Classical (5th BCE Attic)",
	EarlyKoine:      "Early Koine (1st CE Egyptian)",
	LateKoine:       "Late Koine (4th CE)",
	MiddleByzantine: "Middle Byzantine (10th CE)",
	LateByzantine:   "Late Byzantine (15th CE Constantinopolitan)",
}

// All returns every scheme in enumeration order
func All() []Scheme {
	return []Scheme{Classical, EarlyKoine, LateKoine, MiddleByzantine, LateByzantine}
}

// Selectors returns the selector strings accepted by Parse
func Selectors() []string {
	all := All()
	out := make([]string, len(all))
	for i, s := range all {
		out[i] = string(s)
	}
	return out
}

// Parse converts a selector into a Scheme
func Parse(selector string) (Scheme, error) {
	s := Scheme(strings.ToLower(strings.TrimSpace(selector)))
	if _, ok := descriptions[s]; !ok {
		return "", fmt.Errorf("%w: %q (valid: %s)", ErrUnknownScheme, selector, strings.Join(Selectors(), ", "))
	}
	return s, nil
}

// Key returns the engine-specific key, e.g. "cla.cla.IPA"
func (s Scheme) Key() string {
	return fmt.Sprintf("%s.%s.IPA", s, s)
}

// Description returns a human-readable label for the scheme
func (s Scheme) Description() string {
	if d, ok := descriptions[s]; ok {
		return d
	}
	return string(s)
}

func (s Scheme) String() string {
	return string(s)
}
