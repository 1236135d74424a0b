package timeparse

import (
	"smartsched/config"
	"smartsched/models"
)

// DayPartTable maps part-of-day labels to canonical clock ranges. The mapping
// is configuration, not hard-coded per locale.
type DayPartTable map[string]models.DayPart

// DefaultDayParts returns the built-in table used when config supplies none.
func DefaultDayParts() DayPartTable {
	return DayPartTable{
		"morning":   {Label: "morning", StartHour: 6, EndHour: 12},
		"afternoon": {Label: "afternoon", StartHour: 12, EndHour: 17},
		"evening":   {Label: "evening", StartHour: 17, EndHour: 22},
		"night":     {Label: "night", StartHour: 22, EndHour: 6},
	}
}

// DayPartsFromConfig builds the table from loaded application config,
// falling back to defaults for any malformed entry.
func DayPartsFromConfig(cfg config.Config) DayPartTable {
	table := DefaultDayParts()
	set := func(label string, hours []int) {
		if len(hours) == 2 {
			table[label] = models.DayPart{Label: label, StartHour: hours[0], EndHour: hours[1]}
		}
	}
	set("morning", cfg.DayPartMorning)
	set("afternoon", cfg.DayPartAfternoon)
	set("evening", cfg.DayPartEvening)
	set("night", cfg.DayPartNight)
	return table
}
