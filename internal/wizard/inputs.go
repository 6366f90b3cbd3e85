package wizard

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/goldplan/internal/model"
)

// ParseAmount parses a decimal number, accepting a comma as the decimal
// separator.
func ParseAmount(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", s)
	}
	return v, nil
}

// ParseOptionalInt parses a whole number; blank yields nil.
func ParseOptionalInt(s string) (*int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return nil, fmt.Errorf("invalid whole number %q", s)
	}
	return &v, nil
}

// ParseYesNo accepts yes/no answers in English and Russian.
func ParseYesNo(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "y", "yes", "да", "д":
		return true
	}
	return false
}

func formatAmount(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return model.FormatDate(t)
}

func (d *Dialog) textField(title, placeholder string, dst *string) *huh.Input {
	return huh.NewInput().Title(title).Placeholder(placeholder).Value(dst)
}

func (d *Dialog) amountField(title string, dst *float64) *huh.Input {
	raw := formatAmount(*dst)
	d.apply = append(d.apply, func() error {
		v, err := ParseAmount(raw)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	})
	return huh.NewInput().Title(title).Value(&raw).Validate(func(s string) error {
		_, err := ParseAmount(s)
		return err
	})
}

func (d *Dialog) intField(title string, dst *int) *huh.Input {
	raw := ""
	if *dst != 0 {
		raw = strconv.Itoa(*dst)
	}
	d.apply = append(d.apply, func() error {
		v, err := ParseOptionalInt(raw)
		if err != nil {
			return err
		}
		if v == nil {
			return fmt.Errorf("%s is required", title)
		}
		*dst = *v
		return nil
	})
	return huh.NewInput().Title(title).Value(&raw).Validate(func(s string) error {
		v, err := ParseOptionalInt(s)
		if err == nil && v == nil {
			return fmt.Errorf("required")
		}
		return err
	})
}

func (d *Dialog) optionalIntField(title string, dst **int) *huh.Input {
	raw := ""
	if *dst != nil {
		raw = strconv.Itoa(**dst)
	}
	d.apply = append(d.apply, func() error {
		v, err := ParseOptionalInt(raw)
		if err != nil {
			return err
		}
		*dst = v
		return nil
	})
	return huh.NewInput().Title(title).Placeholder("leave blank to plan until today").Value(&raw).
		Validate(func(s string) error {
			_, err := ParseOptionalInt(s)
			return err
		})
}

func (d *Dialog) dateField(title string, dst *time.Time) *huh.Input {
	raw := formatDate(*dst)
	d.apply = append(d.apply, func() error {
		t, err := model.ParseDate(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("invalid date %q, want YYYY-MM-DD", raw)
		}
		*dst = t
		return nil
	})
	return huh.NewInput().Title(title).Placeholder("YYYY-MM-DD").Value(&raw).Validate(func(s string) error {
		if _, err := model.ParseDate(strings.TrimSpace(s)); err != nil {
			return fmt.Errorf("want YYYY-MM-DD")
		}
		return nil
	})
}
