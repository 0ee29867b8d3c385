package report

import (
	"HeatExchange/internal/calc/exchanger"

	"gonum.org/v1/gonum/floats"
)

type Line struct {
	Label string
	Value interface{}
}

// SummaryLines lists inputs and headline results in display order.
func SummaryLines(in exchanger.Input, res exchanger.Result) []Line {
	p := in.Parameters
	gasUnit := "J/(kg·°C)"
	if p.IsGasHeatCapacityVolumetric {
		gasUnit = "kJ/(m³·°C)"
	}
	lines := []Line{
		{"Bed height H, m", p.HeightM},
		{"Cross-section S, m²", p.CrossSectionM2},
		{"Material flow G_m, kg/h", p.MaterialFlowRate},
		{"Gas flow V_g", p.GasFlowRate},
		{"Material inlet t′, °C", p.MaterialInletTemp},
		{"Gas inlet T′, °C", p.GasInletTemp},
		{"Material specific heat C_m, J/(kg·°C)", p.MaterialSpecificHeat},
		{"Gas specific heat C_g, " + gasUnit, p.GasSpecificHeat},
		{"α_v, W/(m³·°C)", res.VolumetricHeatTransferCoefficient},
		{"Steps N", p.CalculationSteps},
		{"Capacity ratio m", res.CapacityRatio},
		{"Heat duty Q, kW", res.TotalHeatTransferKW},
		{"Efficiency, %", res.EfficiencyPct},
		{"Material outlet, °C", res.MaterialOutletTemp},
		{"Gas outlet, °C", res.GasOutletTemp},
		{"Mean ΔT, °C", res.MeanTemperatureDifference},
	}
	if len(res.TemperatureDifferences) > 0 {
		lines = append(lines,
			Line{"Max ΔT, °C", floats.Max(res.TemperatureDifferences)},
			Line{"Min ΔT, °C", floats.Min(res.TemperatureDifferences)},
		)
	}
	return lines
}
