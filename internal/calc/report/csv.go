package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"HeatExchange/internal/calc/exchanger"

	"github.com/gocarina/gocsv"
)

const csvSeparator = ';'

// Meters is written with millimetre precision.
type Meters float64

func (m Meters) MarshalCSV() (string, error) {
	return strconv.FormatFloat(float64(m), 'f', 3, 64), nil
}

func (m *Meters) UnmarshalCSV(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	*m = Meters(v)
	return err
}

// Celsius is written with one decimal.
type Celsius float64

func (c Celsius) MarshalCSV() (string, error) {
	return strconv.FormatFloat(float64(c), 'f', 1, 64), nil
}

func (c *Celsius) UnmarshalCSV(s string) error {
	v, err := strconv.ParseFloat(s, 64)
	*c = Celsius(v)
	return err
}

type Row struct {
	Height     Meters  `csv:"Высота (м)"`
	Material   Celsius `csv:"T материала (°C)"`
	Gas        Celsius `csv:"T газа (°C)"`
	Difference Celsius `csv:"ΔT (°C)"`
}

func Rows(res exchanger.Result) []Row {
	rows := make([]Row, len(res.Heights))
	for i := range res.Heights {
		rows[i] = Row{
			Height:     Meters(res.Heights[i]),
			Material:   Celsius(res.MaterialTemperatures[i]),
			Gas:        Celsius(res.GasTemperatures[i]),
			Difference: Celsius(res.TemperatureDifferences[i]),
		}
	}
	return rows
}

func WriteCSV(w io.Writer, res exchanger.Result) error {
	cw := csv.NewWriter(w)
	cw.Comma = csvSeparator
	if err := gocsv.MarshalCSV(Rows(res), gocsv.NewSafeCSVWriter(cw)); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	return nil
}

func ParseCSV(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.Comma = csvSeparator
	var rows []Row
	if err := gocsv.UnmarshalCSV(cr, &rows); err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}

// FileName turns a calculation name into a download name.
func FileName(name, ext string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "calculation"
	}
	name = strings.NewReplacer(" ", "_", "/", "_", "\\", "_", "\"", "").Replace(name)
	return name + "." + ext
}
