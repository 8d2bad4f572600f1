package team

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a 24-bit RGB display color.
type Color uint32

func (c Color) String() string {
	return fmt.Sprintf("#%06x", uint32(c)&0xFFFFFF)
}

// ParseColor accepts "#rrggbb" or "rrggbb".
func ParseColor(s string) (Color, error) {
	hex := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(hex) != 6 {
		return 0, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color(v), nil
}

// Property describes one well-known key of a team's property bag and how its
// value is written to and read from a document.
type Property struct {
	Key     string
	Default any
	parse   func(string) (any, error)
	format  func(any) string
}

// Parse converts a serialized value into the property's typed value.
func (p *Property) Parse(s string) (any, error) {
	v, err := p.parse(s)
	if err != nil {
		return nil, fmt.Errorf("property %s: %w", p.Key, err)
	}
	return v, nil
}

// Format serializes a typed value.
func (p *Property) Format(v any) string {
	return p.format(v)
}

var (
	PropDisplayName = &Property{
		Key:     "display_name",
		Default: "",
		parse:   func(s string) (any, error) { return s, nil },
		format:  func(v any) string { return v.(string) },
	}
	PropDescription = &Property{
		Key:     "description",
		Default: "",
		parse:   func(s string) (any, error) { return s, nil },
		format:  func(v any) string { return v.(string) },
	}
	PropColor = &Property{
		Key:     "color",
		Default: Color(0xFFFFFF),
		parse:   func(s string) (any, error) { return ParseColor(s) },
		format:  func(v any) string { return v.(Color).String() },
	}
	PropFreeToJoin = &Property{
		Key:     "free_to_join",
		Default: false,
		parse:   func(s string) (any, error) { return strconv.ParseBool(s) },
		format:  func(v any) string { return strconv.FormatBool(v.(bool)) },
	}
)

var properties = map[string]*Property{
	PropDisplayName.Key: PropDisplayName,
	PropDescription.Key: PropDescription,
	PropColor.Key:       PropColor,
	PropFreeToJoin.Key:  PropFreeToJoin,
}

// LookupProperty returns the well-known property for key.
func LookupProperty(key string) (*Property, bool) {
	p, ok := properties[key]
	return p, ok
}

// PropertyKeys lists the well-known keys in display order.
func PropertyKeys() []string {
	return []string{PropDisplayName.Key, PropDescription.Key, PropColor.Key, PropFreeToJoin.Key}
}
