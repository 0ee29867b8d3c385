package report

import (
	"io"

	"HeatExchange/internal/calc/exchanger"

	"github.com/xuri/excelize/v2"
)

const (
	ProfileSheet = "Профиль"
	SummarySheet = "Сводка"
)

func WriteXLSX(w io.Writer, in exchanger.Input, res exchanger.Result) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ProfileSheet); err != nil {
		return err
	}
	header := []interface{}{"Высота (м)", "T материала (°C)", "T газа (°C)", "ΔT (°C)"}
	if err := f.SetSheetRow(ProfileSheet, "A1", &header); err != nil {
		return err
	}
	for i := range res.Heights {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{res.Heights[i], res.MaterialTemperatures[i], res.GasTemperatures[i], res.TemperatureDifferences[i]}
		if err := f.SetSheetRow(ProfileSheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(ProfileSheet, "A", "D", 18); err != nil {
		return err
	}
	last := len(res.Heights) + 1
	if last > 1 {
		heightFmt, tempFmt := "0.000", "0.0"
		hs, err := f.NewStyle(&excelize.Style{CustomNumFmt: &heightFmt})
		if err != nil {
			return err
		}
		ts, err := f.NewStyle(&excelize.Style{CustomNumFmt: &tempFmt})
		if err != nil {
			return err
		}
		bottom, _ := excelize.CoordinatesToCellName(1, last)
		if err := f.SetCellStyle(ProfileSheet, "A2", bottom, hs); err != nil {
			return err
		}
		bottom, _ = excelize.CoordinatesToCellName(4, last)
		if err := f.SetCellStyle(ProfileSheet, "B2", bottom, ts); err != nil {
			return err
		}
	}

	if _, err := f.NewSheet(SummarySheet); err != nil {
		return err
	}
	for i, kv := range SummaryLines(in, res) {
		row := []interface{}{kv.Label, kv.Value}
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return err
		}
	}
	if err := f.SetColWidth(SummarySheet, "A", "A", 42); err != nil {
		return err
	}
	return f.Write(w)
}
