package config

import "time"

// loadLocation resolves a timezone name, defaulting to UTC when empty
func loadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	return time.LoadLocation(name)
}

// Location returns the clinic timezone. All appointment times are
// interpreted in this fixed zone.
func (c *ClinicConfig) Location() *time.Location {
	loc, err := loadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
