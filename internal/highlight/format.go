package highlight

import (
	"fmt"
	"io"
	"strings"

	"github.com/muesli/termenv"
)

// Color profile names accepted by ParseProfile.
const (
	ProfileAuto      = "auto"
	ProfileTrueColor = "truecolor"
	ProfileANSI256   = "ansi256"
	ProfileANSI      = "ansi"
	ProfileASCII     = "ascii"
)

// ParseProfile maps a profile name to a termenv profile. "auto" inspects the
// environment and w.
func ParseProfile(name string, w io.Writer) (termenv.Profile, error) {
	switch name {
	case ProfileTrueColor, "":
		return termenv.TrueColor, nil
	case ProfileANSI256:
		return termenv.ANSI256, nil
	case ProfileANSI:
		return termenv.ANSI, nil
	case ProfileASCII:
		return termenv.Ascii, nil
	case ProfileAuto:
		return termenv.NewOutput(w).EnvColorProfile(), nil
	default:
		return termenv.Ascii, fmt.Errorf("unknown color profile %q", name)
	}
}

// Formatter renders spans as terminal escape sequences.
type Formatter struct {
	profile termenv.Profile
}

// NewFormatter creates a formatter for a color profile.
func NewFormatter(profile termenv.Profile) *Formatter {
	return &Formatter{profile: profile}
}

// Format concatenates spans, each wrapped in its own escape sequence.
func (f *Formatter) Format(spans []Span) string {
	var b strings.Builder
	for _, s := range spans {
		if s.Text == "" {
			continue
		}
		b.WriteString(f.style(s).Styled(s.Text))
	}
	return b.String()
}

func (f *Formatter) style(s Span) termenv.Style {
	st := f.profile.String()
	if s.Style.Color != "" {
		st = st.Foreground(f.profile.Color(s.Style.Color))
	}
	if s.Style.Bold {
		st = st.Bold()
	}
	if s.Style.Italic {
		st = st.Italic()
	}
	if s.Style.Underline {
		st = st.Underline()
	}
	return st
}
