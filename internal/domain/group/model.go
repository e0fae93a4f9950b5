package group

import (
	"errors"
	"strings"
)

// Max length constants.
const (
	MaxNameLength        = 60
	MaxDescriptionLength = 2000
)

// Color presets used for group badges.
const (
	ColorRed    = "red"
	ColorOrange = "orange"
	ColorYellow = "yellow"
	ColorGreen  = "green"
	ColorBlue   = "blue"
	ColorPurple = "purple"
	ColorGrey   = "grey"
)

// DefaultColor is applied when a group is created without a colour.
const DefaultColor = ColorGrey

// ColorHex maps preset names to hex values.
var ColorHex = map[string]string{
	ColorRed:    "#e74c3c",
	ColorOrange: "#F9B232",
	ColorYellow: "#f1c40f",
	ColorGreen:  "#27ae60",
	ColorBlue:   "#2980b9",
	ColorPurple: "#8e44ad",
	ColorGrey:   "#7f8c8d",
}

// ValidColors contains all valid colour preset names, in palette order.
var ValidColors = []string{ColorRed, ColorOrange, ColorYellow, ColorGreen, ColorBlue, ColorPurple, ColorGrey}

// Domain errors
var (
	ErrEmptyName          = errors.New("group name cannot be empty")
	ErrNameTooLong        = errors.New("group name cannot exceed 60 characters")
	ErrDescriptionTooLong = errors.New("group description cannot exceed 2000 characters")
	ErrInvalidColor       = errors.New("group color must be one of: red, orange, yellow, green, blue, purple, grey")
	ErrAlreadyInactive    = errors.New("group is already inactive")
)

// Group is an age group ("tak") that leiding and events are attached to.
// Groups are never deleted, only deactivated.
type Group struct {
	ID          int64
	Name        string
	Description string
	Color       string
	Active      bool
}

// Validate checks if the Group has valid data.
// PRE: Group struct is populated
// POST: Returns nil if valid, error otherwise
func (g *Group) Validate() error {
	if strings.TrimSpace(g.Name) == "" {
		return ErrEmptyName
	}
	if len(g.Name) > MaxNameLength {
		return ErrNameTooLong
	}
	if len(g.Description) > MaxDescriptionLength {
		return ErrDescriptionTooLong
	}
	if g.Color != "" && !IsValidColor(g.Color) {
		return ErrInvalidColor
	}
	return nil
}

// EffectiveColor returns the badge hex value, defaulting to grey.
func (g Group) EffectiveColor() string {
	if hex, ok := ColorHex[g.Color]; ok {
		return hex
	}
	return ColorHex[DefaultColor]
}

// Deactivate marks the group inactive.
// PRE: Group is active
// POST: Active is false
func (g *Group) Deactivate() error {
	if !g.Active {
		return ErrAlreadyInactive
	}
	g.Active = false
	return nil
}

// IsValidColor reports whether c is a palette colour.
func IsValidColor(c string) bool {
	for _, v := range ValidColors {
		if v == c {
			return true
		}
	}
	return false
}

// NameIndex builds an id → name lookup for joining groups onto other records in memory.
func NameIndex(groups []Group) map[int64]string {
	idx := make(map[int64]string, len(groups))
	for _, g := range groups {
		idx[g.ID] = g.Name
	}
	return idx
}
