package report

import (
	"bytes"
	"math"
	"strconv"
	"strings"
	"testing"

	"HeatExchange/internal/calc/exchanger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sampleRun(t *testing.T) (exchanger.Input, exchanger.Result) {
	t.Helper()
	in := exchanger.DefaultInput()
	in.Name = "Обжиг известняка"
	in.Parameters = exchanger.Parameters{
		HeightM:                     2.0,
		CrossSectionM2:              1.0,
		MaterialFlowRate:            3600,
		GasFlowRate:                 3600,
		MaterialInletTemp:           80,
		GasInletTemp:                20,
		MaterialSpecificHeat:        1000,
		GasSpecificHeat:             1.2,
		IsGasHeatCapacityVolumetric: true,
		VolumetricHeatTransferCoeff: 500,
		CalculationSteps:            4,
	}
	res, err := exchanger.Calculate(in.Parameters)
	require.NoError(t, err)
	return in, res
}

func TestWriteCSVFormat(t *testing.T) {
	_, res := sampleRun(t)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, res))

	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	require.Len(t, lines, 6)
	assert.Equal(t, "Высота (м);T материала (°C);T газа (°C);ΔT (°C)", lines[0])
	assert.Equal(t, "0.000;20.0;20.0;0.0", lines[1])
	assert.True(t, strings.HasPrefix(lines[5], "2.000;51.3;46.1;"), lines[5])
}

func TestCSVRoundTrip(t *testing.T) {
	_, res := sampleRun(t)
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, res))

	rows, err := ParseCSV(&buf)
	require.NoError(t, err)
	require.Len(t, rows, len(res.Heights))
	for i, r := range rows {
		assert.InDelta(t, res.Heights[i], float64(r.Height), 0.0005)
		assert.InDelta(t, res.MaterialTemperatures[i], float64(r.Material), 0.05)
		assert.InDelta(t, res.GasTemperatures[i], float64(r.Gas), 0.05)
		assert.InDelta(t, res.TemperatureDifferences[i], float64(r.Difference), 0.05)
	}
}

func TestFileName(t *testing.T) {
	assert.Equal(t, "Расчёт_01.02.2026_10:00.csv", FileName("Расчёт 01.02.2026 10:00", "csv"))
	assert.Equal(t, "calculation.pdf", FileName("  ", "pdf"))
	assert.Equal(t, "a_b.xlsx", FileName("a/b", "xlsx"))
}

func TestWriteXLSX(t *testing.T) {
	in, res := sampleRun(t)
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, in, res))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(ProfileSheet, excelize.Options{RawCellValue: true})
	require.NoError(t, err)
	require.Len(t, rows, 6)
	assert.Equal(t, "Высота (м)", rows[0][0])
	top, err := strconv.ParseFloat(rows[5][0], 64)
	require.NoError(t, err)
	assert.InDelta(t, 2.0, top, 1e-9)

	summary, err := f.GetRows(SummarySheet)
	require.NoError(t, err)
	assert.Len(t, summary, len(SummaryLines(in, res)))
}

func TestWritePlotPNG(t *testing.T) {
	_, res := sampleRun(t)
	var buf bytes.Buffer
	require.NoError(t, WritePlot(&buf, "profile", res, "png"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("\x89PNG")))
}

func TestPlotRejectsNaN(t *testing.T) {
	_, res := sampleRun(t)
	res.MaterialTemperatures[2] = math.NaN()
	_, err := Plot("bad", res)
	assert.Error(t, err)
}

func TestWritePDF(t *testing.T) {
	in, res := sampleRun(t)
	var buf bytes.Buffer
	require.NoError(t, WritePDF(&buf, Document{Title: "Heat exchanger", Input: in, Result: res}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestWritePDFMissingFont(t *testing.T) {
	in, res := sampleRun(t)
	var buf bytes.Buffer
	err := WritePDF(&buf, Document{Input: in, Result: res, FontPath: "/nonexistent/font.ttf"})
	assert.Error(t, err)
}

func TestSummaryLines(t *testing.T) {
	in, res := sampleRun(t)
	lines := SummaryLines(in, res)
	byLabel := map[string]interface{}{}
	for _, l := range lines {
		byLabel[l.Label] = l.Value
	}
	assert.InDelta(t, 60.0, byLabel["Heat duty Q, kW"], 1e-9)
	assert.Contains(t, byLabel, "Gas specific heat C_g, kJ/(m³·°C)")
	assert.Equal(t, 0.0, byLabel["Min ΔT, °C"])
}
