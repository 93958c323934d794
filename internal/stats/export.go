package stats

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"spiralfit/internal/model"
)

// ExportXLSX writes a stored run to a workbook: a Summary sheet with the
// fitted parameters and one sheet per restart holding its progress trace.
func ExportXLSX(path string, run model.FitRun, restarts []model.RestartResult) error {
	if path == "" {
		return fmt.Errorf("output path is required")
	}

	f := excelize.NewFile()

	summary := "Summary"
	f.SetSheetName("Sheet1", summary)

	rows := [][]any{
		{"run_id", run.ID},
		{"created_at_utc", run.CreatedAtUTC},
		{"data_path", run.DataPath},
		{"observations", run.Observations},
		{"seed", run.Seed},
		{"population_size", run.PopulationSize},
		{"max_iterations", run.MaxIterations},
		{"restarts", run.Restarts},
		{"theta_deg", run.Params.ThetaDeg},
		{"m", run.Params.M},
		{"x", run.Params.X},
		{"objective", run.Objective},
		{"evaluations", run.Evaluations},
		{"refined", run.Refined},
	}
	for i, row := range rows {
		keyCell, _ := excelize.CoordinatesToCellName(1, i+1)
		valueCell, _ := excelize.CoordinatesToCellName(2, i+1)
		f.SetCellValue(summary, keyCell, row[0])
		f.SetCellValue(summary, valueCell, row[1])
	}

	for _, r := range restarts {
		sheet := fmt.Sprintf("Run%d", r.Restart)
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		f.SetCellValue(sheet, "A1", "iteration")
		f.SetCellValue(sheet, "B1", "objective")
		for i, point := range r.Trace {
			iterCell, _ := excelize.CoordinatesToCellName(1, i+2)
			objCell, _ := excelize.CoordinatesToCellName(2, i+2)
			f.SetCellValue(sheet, iterCell, point.Iteration)
			f.SetCellValue(sheet, objCell, point.Objective)
		}
	}

	return f.SaveAs(path)
}
