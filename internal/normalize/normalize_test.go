package normalize

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printfarm-backend/internal/model"
)

func TestFilamentAcceptsBothNamingConventions(t *testing.T) {
	display := map[string]any{
		"id":            "f-1",
		"name":          "Galaxy Black",
		"colorHex":      "#101010",
		"weightTotal":   1000.0,
		"weightCurrent": 750.0,
		"price":         120.0,
		"openedAt":      "2026-01-10T00:00:00Z",
	}
	storage := map[string]any{
		"id":             "f-1",
		"name":           "Galaxy Black",
		"color_hex":      "#101010",
		"weight_total":   1000.0,
		"weight_current": 750.0,
		"price":          120.0,
		"opened_at":      "2026-01-10T00:00:00Z",
	}

	assert.Equal(t, Filament(display), Filament(storage))
}

func TestFilamentDefaultsAndClamping(t *testing.T) {
	tests := []struct {
		name string
		raw  map[string]any
		want func(t *testing.T, f model.FilamentSpool)
	}{
		{
			name: "missing current weight means full spool",
			raw:  map[string]any{"weightTotal": 1000.0},
			want: func(t *testing.T, f model.FilamentSpool) {
				assert.Equal(t, 1000.0, f.WeightCurrent)
			},
		},
		{
			name: "current weight clamped to resized-down total",
			raw:  map[string]any{"weightTotal": 500.0, "weightCurrent": 800.0},
			want: func(t *testing.T, f model.FilamentSpool) {
				assert.Equal(t, 500.0, f.WeightTotal)
				assert.Equal(t, 500.0, f.WeightCurrent)
			},
		},
		{
			name: "negative current weight clamped to zero",
			raw:  map[string]any{"weightTotal": 1000.0, "weightCurrent": -5.0},
			want: func(t *testing.T, f model.FilamentSpool) {
				assert.Equal(t, 0.0, f.WeightCurrent)
			},
		},
		{
			name: "invalid total falls back to 1000",
			raw:  map[string]any{"weightTotal": "??", "weightCurrent": 200.0},
			want: func(t *testing.T, f model.FilamentSpool) {
				assert.Equal(t, 1000.0, f.WeightTotal)
				assert.Equal(t, 200.0, f.WeightCurrent)
			},
		},
		{
			name: "blank strings get placeholders",
			raw:  map[string]any{"name": "  ", "brand": "", "material": ""},
			want: func(t *testing.T, f model.FilamentSpool) {
				assert.Equal(t, "New spool", f.Name)
				assert.Equal(t, "Generic", f.Brand)
				assert.Equal(t, "PLA", f.Material)
			},
		},
		{
			name: "negative price clamped to zero",
			raw:  map[string]any{"price": -10.0},
			want: func(t *testing.T, f model.FilamentSpool) {
				assert.Equal(t, 0.0, f.Price)
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := Filament(tc.raw)
			tc.want(t, f)
			assert.GreaterOrEqual(t, f.WeightCurrent, 0.0)
			assert.LessOrEqual(t, f.WeightCurrent, f.WeightTotal)
		})
	}
}

func TestFilamentDefaultsOpenedAtToNow(t *testing.T) {
	before := time.Now().UTC()
	f := Filament(map[string]any{"name": "fresh"})
	after := time.Now().UTC()

	assert.False(t, f.OpenedAt.Before(before))
	assert.False(t, f.OpenedAt.After(after))
}

func TestFilamentIdempotent(t *testing.T) {
	inputs := []map[string]any{
		{
			"id":            "f-1",
			"name":          "Galaxy Black",
			"brand":         "Prusament",
			"material":      "PLA",
			"colorHex":      "ff8800",
			"weightTotal":   "1.000,00",
			"weightCurrent": "333,5",
			"price":         "R$ 89,90",
			"openedAt":      "2026-01-10T00:00:00Z",
		},
		{"opened_at": "2026-01-10T00:00:00Z"}, // everything defaulted
		{
			"id":             "f-2",
			"weight_total":   -3.0,
			"weight_current": 99999.0,
			"price":          nil,
			"color_hex":      "#zzzzzz",
			"opened_at":      "2026-03-01T08:30:00Z",
		},
	}

	for _, raw := range inputs {
		once := Filament(raw)
		twice := Filament(FilamentStorage(once))
		assert.Equal(t, once, twice)
	}
}

func TestPrinterAcceptsBothNamingConventions(t *testing.T) {
	display := map[string]any{
		"id":                       "p-1",
		"name":                     "Ender 3",
		"status":                   "printing",
		"powerWatts":               200.0,
		"yieldTotal":               1200.0,
		"totalHours":               500.0,
		"lastMaintenanceHour":      100.0,
		"maintenanceIntervalHours": 300.0,
	}
	storage := map[string]any{
		"id":                         "p-1",
		"name":                       "Ender 3",
		"status":                     "printing",
		"power_watts":                200.0,
		"yield_total":                1200.0,
		"total_hours":                500.0,
		"last_maintenance_hour":      100.0,
		"maintenance_interval_hours": 300.0,
	}

	assert.Equal(t, Printer(display), Printer(storage))
}

func TestPrinterDefaultsAndClamping(t *testing.T) {
	p := Printer(map[string]any{
		"name":                "Ender 3",
		"status":              "smoking",
		"totalHours":          100.0,
		"lastMaintenanceHour": 250.0,
	})

	assert.Equal(t, model.StatusIdle, p.Status)
	assert.Equal(t, 300.0, p.MaintenanceIntervalHours)
	// The service counter can never lead the usage counter.
	assert.Equal(t, 100.0, p.LastMaintenanceHour)
	assert.NotNil(t, p.History)
	assert.Empty(t, p.History)
}

func TestPrinterHistoryFromEmbeddedJSON(t *testing.T) {
	p := Printer(map[string]any{
		"name":    "Ender 3",
		"history": `[{"date":"2025-11-02T00:00:00Z","type":"nozzle swap","hour_at_event":120}]`,
	})

	require.Len(t, p.History, 1)
	assert.Equal(t, "nozzle swap", p.History[0].Type)
	assert.Equal(t, 120.0, p.History[0].HourAtEvent)
	assert.Equal(t, time.Date(2025, 11, 2, 0, 0, 0, 0, time.UTC), p.History[0].Date)
}

func TestPrinterIdempotent(t *testing.T) {
	inputs := []map[string]any{
		{
			"id":          "p-1",
			"name":        "Ender 3",
			"status":      "PRINTING",
			"power_watts": "200",
			"price":       "2.500,00",
			"total_hours": 500.0,
			"history":     `[{"date":"2025-11-02T00:00:00Z","type":"nozzle swap","hour_at_event":120}]`,
		},
		{}, // fully defaulted
		{
			"id":                       "p-2",
			"totalHours":               -10.0,
			"lastMaintenanceHour":      40.0,
			"maintenanceIntervalHours": "bogus",
		},
	}

	for _, raw := range inputs {
		once := Printer(raw)
		twice := Printer(PrinterStorage(once))
		assert.Equal(t, once, twice)
	}
}

func TestNumberCoercion(t *testing.T) {
	tests := []struct {
		in   any
		want float64
	}{
		{1234.56, 1234.56},
		{int(7), 7},
		{"15.5", 15.5},
		{"1.234,56", 1234.56},
		{"1,234.56", 1234.56},
		{"R$ 12,50", 12.5},
		{"2.500,00", 2500},
		{"1,000", 1},
		{"", -1},
		{"abc", -1},
		{nil, -1},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.want, Number(tc.in, -1), "input %v", tc.in)
	}
}

func TestColor(t *testing.T) {
	assert.Equal(t, "#FF8800", Color("ff8800"))
	assert.Equal(t, "#FF8800", Color("#ff8800"))
	assert.Equal(t, DefaultColorHex, Color(""))
	assert.Equal(t, DefaultColorHex, Color("#zzz"))
	assert.Equal(t, DefaultColorHex, Color("red"))
}
