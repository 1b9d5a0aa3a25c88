package diagnostics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"printfarm-backend/internal/model"
)

func printerAt(totalHours, lastMaintenanceHour float64) model.PrinterUnit {
	return model.PrinterUnit{
		ID:                  "p-1",
		Name:                "Ender 3",
		TotalHours:          totalHours,
		LastMaintenanceHour: lastMaintenanceHour,
	}
}

func taskIDs(tasks []MaintenanceTask) []string {
	ids := make([]string, len(tasks))
	for i, task := range tasks {
		ids[i] = task.ID
	}
	return ids
}

func TestEvaluateFreshlyServicedUnit(t *testing.T) {
	assert.Empty(t, Evaluate(printerAt(0, 0)))
	assert.Empty(t, Evaluate(printerAt(500, 500)))
	// Just under the 90% early-warning threshold of the first rule.
	assert.Empty(t, Evaluate(printerAt(44, 0)))
}

func TestEvaluateAt280Hours(t *testing.T) {
	// 280h since service: cleaning (>=45), belts (>=135) and lubrication
	// (>=270, the early warning) are due; nozzle (>=540) is not.
	tasks := Evaluate(printerAt(280, 0))

	require.Len(t, tasks, 3)
	// Medium severity before low; medium ties keep table order.
	assert.Equal(t, []string{"belts", "lubrication", "cleaning"}, taskIDs(tasks))
}

func TestEvaluateCriticalSortsFirst(t *testing.T) {
	tasks := Evaluate(printerAt(1200, 0))

	require.Len(t, tasks, 6)
	assert.Equal(t, "electrical", tasks[0].ID)
	assert.Equal(t, SeverityCritical, tasks[0].Severity)
	for i := 1; i < len(tasks); i++ {
		assert.LessOrEqual(t, tasks[i-1].Severity, tasks[i].Severity)
	}
}

func TestEvaluateUsesHoursSinceService(t *testing.T) {
	// 1500 total hours but only 40 since the last service.
	assert.Empty(t, Evaluate(printerAt(1500, 1460)))

	// A corrupted counter (last > total) reads as zero, never negative.
	assert.Equal(t, 0.0, HoursSinceService(printerAt(100, 250)))
	assert.Empty(t, Evaluate(printerAt(100, 250)))
}

func TestEvaluateMonotonicallyAccumulatesTasks(t *testing.T) {
	previous := map[string]bool{}
	for _, hours := range []float64{0, 45, 50, 135, 270, 300, 540, 720, 900, 1500} {
		tasks := Evaluate(printerAt(hours, 0))

		current := make(map[string]bool, len(tasks))
		for _, task := range tasks {
			current[task.ID] = true
		}
		// Every previously due task stays due as hours accumulate.
		for id := range previous {
			assert.True(t, current[id], "task %s dropped at %v hours", id, hours)
		}
		previous = current
	}
}

func TestEvaluateHasNoSideEffects(t *testing.T) {
	p := printerAt(280, 0)

	first := Evaluate(p)
	second := Evaluate(p)

	assert.Equal(t, first, second)
	assert.Equal(t, printerAt(280, 0), p)

	// Mutating a result must not leak into the rule table.
	first[0].Label = "tampered"
	assert.Equal(t, "Belt tension check", Evaluate(p)[0].Label)
}
