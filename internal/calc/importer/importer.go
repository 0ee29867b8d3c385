package importer

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"HeatExchange/internal/calc/exchanger"

	"github.com/xuri/excelize/v2"
)

// Columns of the import sheet, after a header row:
// name, H, S, G_m, V_g, t′, T′, C_m, C_g, α_v, volumetric flag, N.
const minColumns = 10

type RowError struct {
	Row   int    `json:"row"`
	Error string `json:"error"`
}

type Row struct {
	Number int
	Input  exchanger.Input
}

// ReadWorkbook parses the first sheet. Rows that cannot be parsed are
// reported with their 1-based sheet row number and skipped.
func ReadWorkbook(r io.Reader, defaults exchanger.Input) ([]Row, []RowError, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, nil, err
	}
	if len(rows) < 2 {
		return nil, nil, fmt.Errorf("empty sheet")
	}

	var out []Row
	var bad []RowError
	for i := 1; i < len(rows); i++ {
		if blank(rows[i]) {
			continue
		}
		in, err := parseRow(rows[i], defaults)
		if err != nil {
			bad = append(bad, RowError{Row: i + 1, Error: err.Error()})
			continue
		}
		out = append(out, Row{Number: i + 1, Input: in})
	}
	return out, bad, nil
}

func parseRow(row []string, defaults exchanger.Input) (exchanger.Input, error) {
	if len(row) < minColumns {
		return exchanger.Input{}, fmt.Errorf("expected at least %d columns, got %d", minColumns, len(row))
	}
	in := defaults
	in.Name = strings.TrimSpace(row[0])

	p := &in.Parameters
	targets := []struct {
		name string
		dst  *float64
	}{
		{"height", &p.HeightM},
		{"cross_section", &p.CrossSectionM2},
		{"material_flow_rate", &p.MaterialFlowRate},
		{"gas_flow_rate", &p.GasFlowRate},
		{"material_inlet_temp", &p.MaterialInletTemp},
		{"gas_inlet_temp", &p.GasInletTemp},
		{"material_specific_heat", &p.MaterialSpecificHeat},
		{"gas_specific_heat", &p.GasSpecificHeat},
		{"volumetric_heat_transfer_coeff", &p.VolumetricHeatTransferCoeff},
	}
	for i, t := range targets {
		v, err := toFloat(row[i+1])
		if err != nil {
			return exchanger.Input{}, fmt.Errorf("%s: %w", t.name, err)
		}
		*t.dst = v
	}
	if len(row) > 10 && strings.TrimSpace(row[10]) != "" {
		flag, err := toBool(row[10])
		if err != nil {
			return exchanger.Input{}, err
		}
		p.IsGasHeatCapacityVolumetric = flag
	}
	if len(row) > 11 && strings.TrimSpace(row[11]) != "" {
		n, err := strconv.Atoi(strings.TrimSpace(row[11]))
		if err != nil {
			return exchanger.Input{}, fmt.Errorf("calculation_steps: %w", err)
		}
		p.CalculationSteps = n
	}
	return in, nil
}

func toFloat(s string) (float64, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	return strconv.ParseFloat(s, 64)
}

func toBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "true", "да", "yes", "объёмная", "объемная":
		return true, nil
	case "0", "false", "нет", "no", "массовая":
		return false, nil
	}
	return false, fmt.Errorf("volumetric flag: unrecognised value %q", s)
}

func blank(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
