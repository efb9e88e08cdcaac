package services

import (
	"fmt"
	"strings"
	"time"

	"staff_rota_backend/internal/models"
)

// Sentinel timing values used in the shift catalog. They are display labels,
// not clock times.
const (
	TimeClose                = "Close"
	TimeFlexible             = "Flexible"
	TimeSpecifiedByScheduler = "Specified by Scheduler"
)

// ShiftTypeDefinition is one entry of the role/weekday shift catalog.
type ShiftTypeDefinition struct {
	Type  string `json:"type"`
	Start string `json:"start"`
	End   string `json:"end"`
}

// RequiresCustomTimes reports whether the scheduler must supply explicit
// start/end times when assigning this shift type.
func (d ShiftTypeDefinition) RequiresCustomTimes() bool {
	return d.Start == TimeSpecifiedByScheduler || d.End == TimeSpecifiedByScheduler
}

type dayDefinitions map[string][]ShiftTypeDefinition

// shiftCatalog maps role name -> weekday name (or "default") -> ordered
// definitions. Roles without an entry fall back to the manager rules.
var shiftCatalog = map[string]dayDefinitions{
	"bartender": {
		"Tuesday":   bartenderEarlyWeek(),
		"Wednesday": bartenderEarlyWeek(),
		"Thursday":  bartenderEarlyWeek(),
		"Friday":    bartenderWeekend(),
		"Saturday":  bartenderWeekend(),
		"Sunday": {
			{models.ShiftOpen, "08:00", "15:00"},
			{models.ShiftDay, "10:00", "17:00"},
			{models.ShiftNight, "15:00", TimeClose},
			{models.ShiftDoubleA, "08:00", TimeSpecifiedByScheduler},
			{models.ShiftDoubleB, "10:00", TimeSpecifiedByScheduler},
			{models.ShiftSplitDouble, TimeSpecifiedByScheduler, TimeSpecifiedByScheduler},
		},
	},
	"waiter": {
		"Tuesday":   waiterWeekday(),
		"Wednesday": waiterWeekday(),
		"Thursday":  waiterWeekday(),
		"Friday":    waiterWeekday(),
		"Saturday":  waiterWeekday(),
		"Sunday": {
			{models.ShiftDay, "10:00", "16:00"},
			{models.ShiftNight, "16:00", TimeClose},
			{models.ShiftDouble, "10:00", TimeClose},
		},
	},
	"skullers": {
		"default": {
			{models.ShiftOpen, TimeFlexible, TimeFlexible},
			{models.ShiftDay, "09:00", "17:00"},
			{models.ShiftNight, "17:00", TimeClose},
			{models.ShiftDouble, "09:00", TimeClose},
			{models.ShiftSplitDouble, TimeSpecifiedByScheduler, TimeSpecifiedByScheduler},
		},
	},
	"manager": {
		"default": {
			{models.ShiftSplitDouble, TimeSpecifiedByScheduler, TimeSpecifiedByScheduler},
		},
	},
}

func bartenderEarlyWeek() []ShiftTypeDefinition {
	return []ShiftTypeDefinition{
		{models.ShiftOpen, "08:00", "16:00"},
		{models.ShiftDay, "10:00", "16:00"},
		{models.ShiftNight, "16:00", TimeClose},
		{models.ShiftDoubleA, "08:00", TimeSpecifiedByScheduler},
		{models.ShiftDoubleB, "10:00", TimeSpecifiedByScheduler},
		{models.ShiftSplitDouble, TimeSpecifiedByScheduler, TimeSpecifiedByScheduler},
	}
}

func bartenderWeekend() []ShiftTypeDefinition {
	return []ShiftTypeDefinition{
		{models.ShiftOpen, "08:00", "17:00"},
		{models.ShiftDay, "10:00", "17:00"},
		{models.ShiftNight, "15:00", TimeClose},
		{models.ShiftDoubleA, "08:00", TimeSpecifiedByScheduler},
		{models.ShiftDoubleB, "10:00", TimeSpecifiedByScheduler},
		{models.ShiftSplitDouble, TimeSpecifiedByScheduler, TimeSpecifiedByScheduler},
	}
}

func waiterWeekday() []ShiftTypeDefinition {
	return []ShiftTypeDefinition{
		{models.ShiftDay, "09:45", "16:00"},
		{models.ShiftNight, "16:00", TimeClose},
		{models.ShiftDouble, "09:45", TimeClose},
	}
}

// DefinitionsFor resolves the ordered shift definitions for a role on a
// weekday. Resolution: exact weekday -> role "default" -> manager rules ->
// empty. An unknown role (e.g. system_admin) uses the manager rules.
func DefinitionsFor(roleName, dayName string) []ShiftTypeDefinition {
	roleDef, ok := shiftCatalog[roleName]
	if !ok {
		roleDef = shiftCatalog["manager"]
	}
	if defs, ok := roleDef[dayName]; ok {
		return defs
	}
	if defs, ok := roleDef["default"]; ok {
		return defs
	}
	return nil
}

// DefinitionFor returns the single definition for a shift type, if the
// role/day offers it.
func DefinitionFor(roleName, dayName, shiftType string) (ShiftTypeDefinition, bool) {
	for _, def := range DefinitionsFor(roleName, dayName) {
		if def.Type == shiftType {
			return def, true
		}
	}
	return ShiftTypeDefinition{}, false
}

// ShiftTypesFor returns just the ordered type labels for a role and weekday.
func ShiftTypesFor(roleName, dayName string) []string {
	defs := DefinitionsFor(roleName, dayName)
	types := make([]string, 0, len(defs))
	for _, def := range defs {
		types = append(types, def.Type)
	}
	return types
}

// DisplayWindow formats the time window for one assignment, e.g.
// "(15:00 - Close)". Custom times override the catalog; a custom end of
// "close" in any casing renders as "Close". Returns "" when nothing applies.
func DisplayWindow(roleName, dayName, shiftType string, customStart, customEnd *string) string {
	if customStart != nil && customEnd != nil && *customStart != "" && *customEnd != "" {
		end := *customEnd
		if strings.EqualFold(end, TimeClose) {
			end = TimeClose
		}
		return fmt.Sprintf("(%s - %s)", *customStart, end)
	}

	if def, ok := DefinitionFor(roleName, dayName, shiftType); ok {
		return fmt.Sprintf("(%s - %s)", def.Start, def.End)
	}
	return ""
}

// WeekdayName returns the English weekday name used as catalog key.
func WeekdayName(date time.Time) string {
	return date.UTC().Weekday().String()
}
