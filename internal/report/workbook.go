package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"
)

const (
	sheetRuns   = "Runs"
	sheetDrones = "Drones"
	sheetEvents = "Events"
)

// WriteWorkbook saves one row per run, one row per drone final state and
// every flight event into an .xlsx file at path.
func WriteWorkbook(path string, runs []Run) (err error) {
	f := excelize.NewFile()
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	for _, name := range []string{sheetRuns, sheetDrones, sheetEvents} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("creating sheet %s: %w", name, err)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return err
	}

	headersRuns := []string{"Run", "Scenario", "Ticks", "First takeoff", "First hovering", "First collision",
		"First landing", "All landed", "Status changes", "Collisions", "Step changes", "Low power landings",
		"Arrivals", "Avg steps", "Avg cost (ms)", "Max cost (ms)", "Avg airborne", "Avg power (%)"}
	if err := f.SetSheetRow(sheetRuns, "A1", &headersRuns); err != nil {
		return err
	}
	headersDrones := []string{"Run", "Drone", "Status", "X", "Y", "Goal X", "Goal Y", "Speed", "Power (%)",
		"Azimuth", "Height", "Collision", "Server"}
	if err := f.SetSheetRow(sheetDrones, "A1", &headersDrones); err != nil {
		return err
	}
	headersEvents := []string{"Run", "Tick", "Drone", "Category", "Key", "Value", "Num"}
	if err := f.SetSheetRow(sheetEvents, "A1", &headersEvents); err != nil {
		return err
	}

	runRow, droneRow, eventRow := 2, 2, 2
	for _, r := range runs {
		row := []interface{}{r.Index, r.Scenario, r.Ticks,
			r.Markers.FirstTakeoff, r.Markers.FirstHovering, r.Markers.FirstCollision,
			r.Markers.FirstLanding, r.Markers.AllLanded,
			r.Totals.Status, r.Totals.Collision, r.Totals.StepChange, r.Totals.LowPower, r.Totals.Arrived}
		if w := r.Window; w != nil {
			row = append(row, w.AvgSteps, w.AvgCostMs, w.MaxCostMs, w.AvgAirborne, w.AvgPower)
		}
		if err := f.SetSheetRow(sheetRuns, fmt.Sprintf("A%d", runRow), &row); err != nil {
			return err
		}
		runRow++

		for _, d := range r.Final {
			dr := []interface{}{r.Index, d.Name, d.Status.String(), d.Position.X, d.Position.Y,
				d.Goal.X, d.Goal.Y, d.Speed, d.Power, d.Azimuth, d.Height, d.Collision, d.TargetServer}
			if err := f.SetSheetRow(sheetDrones, fmt.Sprintf("A%d", droneRow), &dr); err != nil {
				return err
			}
			droneRow++
		}

		for _, e := range r.Events {
			er := []interface{}{r.Index, e.Tick, e.Drone, e.Category, e.Key, e.Value, e.NumVal}
			if err := f.SetSheetRow(sheetEvents, fmt.Sprintf("A%d", eventRow), &er); err != nil {
				return err
			}
			eventRow++
		}
	}

	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("creating report dir: %w", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}
