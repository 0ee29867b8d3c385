package importer

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"HeatExchange/internal/auth"
	"HeatExchange/internal/calc/exchanger"
	"HeatExchange/internal/calc/history"
	"HeatExchange/internal/repo"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type savedRuns struct {
	rows []repo.Calculation
}

func (s *savedRuns) CreateCalculation(_ context.Context, c repo.Calculation) (repo.Calculation, error) {
	c.ID = len(s.rows) + 1
	s.rows = append(s.rows, c)
	return c, nil
}

func (s *savedRuns) GetCalculation(context.Context, int, int) (repo.Calculation, error) {
	return repo.Calculation{}, repo.ErrNotFound
}

func (s *savedRuns) ListCalculations(context.Context, int, int) ([]repo.Calculation, error) {
	return s.rows, nil
}

func (s *savedRuns) DeleteCalculation(context.Context, int, int) error { return nil }

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

var header = []interface{}{"name", "H", "S", "G_m", "V_g", "t'", "T'", "C_m", "C_g", "alpha_v", "volumetric", "N"}

func TestReadWorkbook(t *testing.T) {
	buf := workbook(t, [][]interface{}{
		header,
		{"Печь 1", 2, 1, 3600, 3600, 80, 20, 1000, 1.2, 500},
		{"Печь 2", "2,5", 1, 3600, 7200, 80, 20, 1000, 1005, 500, "нет", 50},
		{},
		{"broken", "abc", 1, 1, 1, 1, 1, 1, 1, 1},
		{"short", 1, 2},
		{"flag", 1, 1, 1, 1, 1, 1, 1, 1, 1, "maybe"},
	})

	rows, bad, err := ReadWorkbook(buf, exchanger.DefaultInput())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0].Input
	assert.Equal(t, 2, rows[0].Number)
	assert.Equal(t, "Печь 1", first.Name)
	assert.True(t, first.Parameters.IsGasHeatCapacityVolumetric)
	assert.Equal(t, exchanger.DefaultSteps, first.Parameters.CalculationSteps)
	assert.Equal(t, 1.2, first.Parameters.GasSpecificHeat)

	second := rows[1].Input.Parameters
	assert.Equal(t, 2.5, second.HeightM)
	assert.False(t, second.IsGasHeatCapacityVolumetric)
	assert.Equal(t, 50, second.CalculationSteps)

	require.Len(t, bad, 3)
	assert.Equal(t, 5, bad[0].Row)
	assert.Contains(t, bad[0].Error, "height")
	assert.Equal(t, 6, bad[1].Row)
	assert.Equal(t, 7, bad[2].Row)
}

func TestReadWorkbookEmpty(t *testing.T) {
	_, _, err := ReadWorkbook(workbook(t, [][]interface{}{header}), exchanger.DefaultInput())
	assert.Error(t, err)

	_, _, err = ReadWorkbook(bytes.NewBufferString("not a workbook"), exchanger.DefaultInput())
	assert.Error(t, err)
}

func TestImportHandler(t *testing.T) {
	store := &savedRuns{}
	h := &Handler{Service: history.NewService(store, 0), Defaults: exchanger.DefaultInput()}
	buf := workbook(t, [][]interface{}{
		header,
		{"ok", 2, 1, 3600, 3600, 80, 20, 1000, 1.2, 500, 1, 10},
		{"invalid", 0, 1, 3600, 3600, 80, 20, 1000, 1.2, 500},
	})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "runs.xlsx")
	require.NoError(t, err)
	_, err = part.Write(buf.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/calculations/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req = req.WithContext(auth.WithUser(req.Context(), 9, "tester"))
	rec := httptest.NewRecorder()
	h.Import(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var out ImportResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	assert.Equal(t, 1, out.Count)
	assert.Equal(t, []int{1}, out.IDs)
	require.Len(t, out.Errors, 1)
	assert.Equal(t, 3, out.Errors[0].Row)
	require.Len(t, store.rows, 1)
	assert.Equal(t, 9, store.rows[0].UserID)
	assert.Equal(t, "ok", store.rows[0].Name)
}

func TestImportHandlerRequiresFile(t *testing.T) {
	h := &Handler{Service: history.NewService(&savedRuns{}, 0), Defaults: exchanger.DefaultInput()}
	req := httptest.NewRequest(http.MethodPost, "/calculations/import", nil)
	req = req.WithContext(auth.WithUser(req.Context(), 1, "tester"))
	rec := httptest.NewRecorder()
	h.Import(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
