// Package normalize converts loosely-typed entity records into canonical,
// fully-typed models. Inbound records may use either the display (camelCase)
// or the storage (snake_case) field naming convention, and numeric fields may
// arrive as numbers, numeric strings, or locale-formatted strings such as
// "1.234,56". The outbound serializers emit the storage convention only, so
// the two conventions never circulate past this boundary.
package normalize

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"
	"time"

	"printfarm-backend/internal/model"
)

// Fallbacks applied when a numeric field is missing or unparseable.
const (
	DefaultWeightTotal         = 1000.0
	DefaultMaintenanceInterval = 300.0
	DefaultColorHex            = "#3B82F6"
)

var colorRe = regexp.MustCompile(`^#?[0-9a-fA-F]{6}$`)

// Filament builds a canonical FilamentSpool from a raw record.
// The result always satisfies 0 <= weightCurrent <= weightTotal.
func Filament(raw map[string]any) model.FilamentSpool {
	f := model.FilamentSpool{
		ID:       pickString(raw, "id"),
		Name:     defaultString(pickString(raw, "name"), "New spool"),
		Brand:    defaultString(pickString(raw, "brand"), "Generic"),
		Material: defaultString(pickString(raw, "material"), "PLA"),
		ColorHex: Color(pickString(raw, "colorHex", "color_hex")),
		Price:    clampMin(pickNumber(raw, 0, "price"), 0),
		OpenedAt: pickTime(raw, "openedAt", "opened_at"),
	}

	f.WeightTotal = pickNumber(raw, DefaultWeightTotal, "weightTotal", "weight_total")
	if f.WeightTotal <= 0 {
		f.WeightTotal = DefaultWeightTotal
	}

	// A spool with no recorded current weight is assumed full.
	if _, ok := pick(raw, "weightCurrent", "weight_current"); ok {
		f.WeightCurrent = pickNumber(raw, 0, "weightCurrent", "weight_current")
	} else {
		f.WeightCurrent = f.WeightTotal
	}
	f.WeightCurrent = clamp(f.WeightCurrent, 0, f.WeightTotal)

	return f
}

// Printer builds a canonical PrinterUnit from a raw record.
// The result always satisfies lastMaintenanceHour <= totalHours.
func Printer(raw map[string]any) model.PrinterUnit {
	p := model.PrinterUnit{
		ID:         pickString(raw, "id"),
		Name:       defaultString(pickString(raw, "name"), "Printer"),
		Brand:      pickString(raw, "brand"),
		Model:      pickString(raw, "model"),
		Status:     Status(pickString(raw, "status")),
		PowerWatts: clampMin(pickNumber(raw, 0, "powerWatts", "power_watts"), 0),
		Price:      clampMin(pickNumber(raw, 0, "price"), 0),
		YieldTotal: clampMin(pickNumber(raw, 0, "yieldTotal", "yield_total"), 0),
		TotalHours: clampMin(pickNumber(raw, 0, "totalHours", "total_hours"), 0),
		History:    pickHistory(raw, "history"),
	}

	p.MaintenanceIntervalHours = pickNumber(raw, DefaultMaintenanceInterval,
		"maintenanceIntervalHours", "maintenance_interval_hours")
	if p.MaintenanceIntervalHours <= 0 {
		p.MaintenanceIntervalHours = DefaultMaintenanceInterval
	}

	p.LastMaintenanceHour = clamp(
		pickNumber(raw, 0, "lastMaintenanceHour", "last_maintenance_hour"),
		0, p.TotalHours)

	return p
}

// FilamentStorage serializes a spool into the storage-convention record shape.
func FilamentStorage(f model.FilamentSpool) map[string]any {
	return map[string]any{
		"id":             f.ID,
		"name":           f.Name,
		"brand":          f.Brand,
		"material":       f.Material,
		"color_hex":      f.ColorHex,
		"weight_total":   f.WeightTotal,
		"weight_current": f.WeightCurrent,
		"price":          f.Price,
		"opened_at":      f.OpenedAt.UTC().Format(time.RFC3339Nano),
	}
}

// PrinterStorage serializes a printer into the storage-convention record
// shape. History is always present, as an array ([] when empty).
func PrinterStorage(p model.PrinterUnit) map[string]any {
	history := make([]any, 0, len(p.History))
	for _, ev := range p.History {
		history = append(history, map[string]any{
			"date":          ev.Date.UTC().Format(time.RFC3339Nano),
			"type":          ev.Type,
			"hour_at_event": ev.HourAtEvent,
		})
	}
	return map[string]any{
		"id":                         p.ID,
		"name":                       p.Name,
		"brand":                      p.Brand,
		"model":                      p.Model,
		"status":                     string(p.Status),
		"power_watts":                p.PowerWatts,
		"price":                      p.Price,
		"yield_total":                p.YieldTotal,
		"total_hours":                p.TotalHours,
		"last_maintenance_hour":      p.LastMaintenanceHour,
		"maintenance_interval_hours": p.MaintenanceIntervalHours,
		"history":                    history,
	}
}

// Status coerces a raw status string, falling back to idle for anything
// outside the recognized set.
func Status(s string) model.PrinterStatus {
	st := model.PrinterStatus(strings.ToLower(strings.TrimSpace(s)))
	if !model.ValidStatus(st) {
		return model.StatusIdle
	}
	return st
}

// Color validates a 6-digit hex color and canonicalizes it to "#RRGGBB"
// upper case, falling back to the default blue.
func Color(s string) string {
	s = strings.TrimSpace(s)
	if !colorRe.MatchString(s) {
		return DefaultColorHex
	}
	return "#" + strings.ToUpper(strings.TrimPrefix(s, "#"))
}

// Number coerces a loosely-typed value into a float64, returning fallback
// when the value is missing or unparseable. String input tolerates currency
// prefixes and locale formatting ("1.234,56" means 1234.56).
func Number(v any, fallback float64) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		if f, err := n.Float64(); err == nil {
			return f
		}
	case string:
		if f, err := parseLocaleNumber(n); err == nil {
			return f
		}
	}
	return fallback
}

func parseLocaleNumber(s string) (float64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "R$")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, " ", "")

	dot := strings.LastIndex(s, ".")
	comma := strings.LastIndex(s, ",")
	switch {
	case dot >= 0 && comma >= 0 && comma > dot:
		// Brazilian style: dot groups thousands, comma is the decimal mark.
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0 && strings.Count(s, ",") == 1:
		s = strings.Replace(s, ",", ".", 1)
	case comma >= 0:
		s = strings.ReplaceAll(s, ",", "")
	}
	return strconv.ParseFloat(s, 64)
}

func pick(raw map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := raw[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func pickNumber(raw map[string]any, fallback float64, keys ...string) float64 {
	v, ok := pick(raw, keys...)
	if !ok {
		return fallback
	}
	return Number(v, fallback)
}

func pickString(raw map[string]any, keys ...string) string {
	v, ok := pick(raw, keys...)
	if !ok {
		return ""
	}
	switch s := v.(type) {
	case string:
		return strings.TrimSpace(s)
	case float64:
		return strconv.FormatFloat(s, 'f', -1, 64)
	case int:
		return strconv.Itoa(s)
	case int64:
		return strconv.FormatInt(s, 10)
	case json.Number:
		return s.String()
	}
	return ""
}

func pickTime(raw map[string]any, keys ...string) time.Time {
	v, ok := pick(raw, keys...)
	if !ok {
		return time.Now().UTC()
	}
	switch t := v.(type) {
	case time.Time:
		return t.UTC()
	case string:
		for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed.UTC()
			}
		}
	}
	return time.Now().UTC()
}

func pickHistory(raw map[string]any, keys ...string) model.MaintenanceHistory {
	v, ok := pick(raw, keys...)
	if !ok {
		return model.MaintenanceHistory{}
	}

	var entries []any
	switch h := v.(type) {
	case model.MaintenanceHistory:
		return h
	case []model.MaintenanceEvent:
		return h
	case []any:
		entries = h
	case string:
		// History may arrive embedded as a JSON string.
		var decoded []any
		if err := json.Unmarshal([]byte(h), &decoded); err != nil {
			return model.MaintenanceHistory{}
		}
		entries = decoded
	default:
		return model.MaintenanceHistory{}
	}

	history := make(model.MaintenanceHistory, 0, len(entries))
	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		history = append(history, model.MaintenanceEvent{
			Date:        pickTime(entry, "date"),
			Type:        pickString(entry, "type"),
			HourAtEvent: pickNumber(entry, 0, "hourAtEvent", "hour_at_event"),
		})
	}
	return history
}

func defaultString(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampMin(v, lo float64) float64 {
	if v < lo {
		return lo
	}
	return v
}
