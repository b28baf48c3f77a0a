package feed

import "github.com/iliyamo/event-feed/internal/model"

// Defaults holds every placeholder the feed substitutes for missing data.
// It is the only place these values are defined; handlers and services
// never invent their own fallbacks.
type Defaults struct {
	Image          string            `yaml:"image"`
	Avatar         string            `yaml:"avatar"`
	OrganizerName  string            `yaml:"organizer_name"`
	OrganizerEmail string            `yaml:"organizer_email"`
	AnonymousName  string            `yaml:"anonymous_name"`
	Description    string            `yaml:"description"`
	Parking        string            `yaml:"parking"`
	Coordinates    model.Coordinates `yaml:"coordinates"`
}

// StandardDefaults returns the built-in placeholders.
func StandardDefaults() Defaults {
	return Defaults{
		Image:          "/events/sample.jpg",
		Avatar:         "/placeholder.svg",
		OrganizerName:  "Event Organizer",
		OrganizerEmail: "eventorganizer@gmail.com",
		AnonymousName:  "Anonymous",
		Description:    "No description available",
		Parking:        "Parking details to be announced",
		Coordinates:    model.Coordinates{Lat: 14.5311, Lng: 120.9826},
	}
}

// Complete fills zero fields of d from StandardDefaults, so a partially
// written settings file still yields a usable value.
func (d Defaults) Complete() Defaults {
	std := StandardDefaults()
	if d.Image == "" {
		d.Image = std.Image
	}
	if d.Avatar == "" {
		d.Avatar = std.Avatar
	}
	if d.OrganizerName == "" {
		d.OrganizerName = std.OrganizerName
	}
	if d.OrganizerEmail == "" {
		d.OrganizerEmail = std.OrganizerEmail
	}
	if d.AnonymousName == "" {
		d.AnonymousName = std.AnonymousName
	}
	if d.Description == "" {
		d.Description = std.Description
	}
	if d.Parking == "" {
		d.Parking = std.Parking
	}
	if d.Coordinates == (model.Coordinates{}) {
		d.Coordinates = std.Coordinates
	}
	return d
}
