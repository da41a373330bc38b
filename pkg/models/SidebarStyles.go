package models

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	colorPattern = regexp.MustCompile(`^(#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})|rgba?\(\s*\d{1,3}\s*,\s*\d{1,3}\s*,\s*\d{1,3}\s*(,\s*(0|1|0?\.\d+)\s*)?\))$`)

	ErrInvalidStyles = fmt.Errorf("invalid sidebar styles")
)

/*
SidebarStyles holds the display properties the customize panel edits.
*/
type SidebarStyles struct {
	BgColor               string
	TextColor             string
	BorderColor           string
	BorderRadius          int
	FontFamily            string
	FontSize              int
	ActiveBackgroundColor string
	ActiveTextColor       string
	HoverBackgroundColor  string
	IconColor             string
	IconSize              int
	UIBackgroundColor     string
	BackgroundVideo       string
}

func DefaultSidebarStyles() SidebarStyles {
	return SidebarStyles{
		BgColor:               "#1f2937",
		TextColor:             "#f9fafb",
		BorderColor:           "#374151",
		BorderRadius:          24,
		FontFamily:            "Inter, sans-serif",
		FontSize:              14,
		ActiveBackgroundColor: "#3b82f6",
		ActiveTextColor:       "#ffffff",
		HoverBackgroundColor:  "#374151",
		IconColor:             "#d1d5db",
		IconSize:              24,
		UIBackgroundColor:     "#111827",
		BackgroundVideo:       "",
	}
}

/*
Validate returns ErrInvalidStyles joined with one error per bad field.
*/
func (s SidebarStyles) Validate() error {
	var errs []error

	colors := []struct {
		name  string
		value string
	}{
		{"background color", s.BgColor},
		{"text color", s.TextColor},
		{"border color", s.BorderColor},
		{"active background color", s.ActiveBackgroundColor},
		{"active text color", s.ActiveTextColor},
		{"hover background color", s.HoverBackgroundColor},
		{"icon color", s.IconColor},
		{"page background color", s.UIBackgroundColor},
	}

	for _, c := range colors {
		if !colorPattern.MatchString(strings.TrimSpace(c.value)) {
			errs = append(errs, fmt.Errorf("%s '%s' is not a valid color", c.name, c.value))
		}
	}

	if s.BorderRadius < 0 || s.BorderRadius > 64 {
		errs = append(errs, fmt.Errorf("border radius must be between 0 and 64"))
	}

	if s.FontSize < 8 || s.FontSize > 32 {
		errs = append(errs, fmt.Errorf("font size must be between 8 and 32"))
	}

	if s.IconSize < 12 || s.IconSize > 64 {
		errs = append(errs, fmt.Errorf("icon size must be between 12 and 64"))
	}

	if strings.TrimSpace(s.FontFamily) == "" || strings.ContainsAny(s.FontFamily, ";<>{}") {
		errs = append(errs, fmt.Errorf("font family is not valid"))
	}

	if s.BackgroundVideo != "" &&
		!strings.HasPrefix(s.BackgroundVideo, "https://") &&
		!strings.HasPrefix(s.BackgroundVideo, "http://") &&
		!strings.HasPrefix(s.BackgroundVideo, "/") {
		errs = append(errs, fmt.Errorf("background video must be an http(s) URL or a site path"))
	}

	if len(errs) == 0 {
		return nil
	}

	return errors.Join(append([]error{ErrInvalidStyles}, errs...)...)
}
