package exchanger

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

const (
	DefaultSteps = 400
	// MaxSteps bounds the profile length; each step holds four float64 values.
	MaxSteps = 100000

	// |m-1| below this uses the limiting formula for equal capacity rates.
	singularTolerance = 1e-6
	denomTolerance    = 1e-9
	secondsPerHour    = 3600.0
)

var (
	ErrInvalidParameter = errors.New("invalid parameter")
	ErrDegenerateFlow   = errors.New("degenerate gas flow: heat capacity rate is zero")
	ErrNonFinite        = errors.New("result contains non-finite values")
)

// ParameterError names the operating parameter that failed validation.
type ParameterError struct {
	Field string
	Value float64
	Max   float64 // set when the value exceeds an upper bound
}

func (e *ParameterError) Error() string {
	if e.Max > 0 {
		return fmt.Sprintf("%s must be <= %g, got %g", e.Field, e.Max, e.Value)
	}
	return fmt.Sprintf("%s must be > 0, got %g", e.Field, e.Value)
}

func (e *ParameterError) Unwrap() error { return ErrInvalidParameter }

type Material struct {
	Name         string  `json:"name"`
	Density      float64 `json:"density"`       // kg/m³
	SpecificHeat float64 `json:"specific_heat"` // J/(kg·°C)
	ParticleSize float64 `json:"particle_size"` // m
	Porosity     float64 `json:"porosity"`
}

type Gas struct {
	Name                string  `json:"name"`
	Density             float64 `json:"density"`
	SpecificHeat        float64 `json:"specific_heat"`
	Viscosity           float64 `json:"viscosity"`
	ThermalConductivity float64 `json:"thermal_conductivity"`
}

type Parameters struct {
	HeightM                     float64 `json:"height"`             // H, m
	CrossSectionM2              float64 `json:"cross_section"`      // S, m²
	MaterialFlowRate            float64 `json:"material_flow_rate"` // G_m, kg/h
	GasFlowRate                 float64 `json:"gas_flow_rate"`      // V_g, kg/h or m³/h
	MaterialInletTemp           float64 `json:"material_inlet_temp"`
	GasInletTemp                float64 `json:"gas_inlet_temp"`
	MaterialSpecificHeat        float64 `json:"material_specific_heat"` // J/(kg·°C)
	GasSpecificHeat             float64 `json:"gas_specific_heat"`      // kJ/(m³·°C) or J/(kg·°C)
	IsGasHeatCapacityVolumetric bool    `json:"is_gas_heat_capacity_volumetric"`
	VolumetricHeatTransferCoeff float64 `json:"volumetric_heat_transfer_coeff"` // α_v, W/(m³·°C)
	CalculationSteps            int     `json:"calculation_steps"`
}

type Input struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Material    Material   `json:"material"`
	Gas         Gas        `json:"gas"`
	Parameters  Parameters `json:"parameters"`
}

type Result struct {
	// HeatTransferCoefficient (α, W/(m²·°C)) is kept in stored records but not computed; always 0.
	HeatTransferCoefficient           float64 `json:"heat_transfer_coefficient"`
	VolumetricHeatTransferCoefficient float64 `json:"volumetric_heat_transfer_coefficient"`
	TotalHeatTransferKW               float64 `json:"total_heat_transfer"`
	EfficiencyPct                     float64 `json:"efficiency"`
	MaterialOutletTemp                float64 `json:"material_outlet_temp"`
	GasOutletTemp                     float64 `json:"gas_outlet_temp"`

	MaterialCapacityRate      float64 `json:"material_capacity_rate"` // W/(m²·°C)
	GasCapacityRate           float64 `json:"gas_capacity_rate"`
	CapacityRatio             float64 `json:"capacity_ratio"`
	Singular                  bool    `json:"singular"`
	MeanTemperatureDifference float64 `json:"mean_temperature_difference"`

	Heights                []float64 `json:"heights"`
	MaterialTemperatures   []float64 `json:"material_temperatures"`
	GasTemperatures        []float64 `json:"gas_temperatures"`
	TemperatureDifferences []float64 `json:"temperature_differences"`

	Warnings []string `json:"warnings,omitempty"`
}

// DefaultParameters is the base that request decoding and INI overrides start from.
func DefaultParameters() Parameters {
	return Parameters{
		IsGasHeatCapacityVolumetric: true,
		CalculationSteps:            DefaultSteps,
	}
}

func DefaultInput() Input {
	return Input{Parameters: DefaultParameters()}
}

// Validate reports the first operating parameter outside its domain.
func (p Parameters) Validate() error {
	checks := []struct {
		field string
		value float64
	}{
		{"height", p.HeightM},
		{"cross_section", p.CrossSectionM2},
		{"material_flow_rate", p.MaterialFlowRate},
		{"gas_flow_rate", p.GasFlowRate},
		{"volumetric_heat_transfer_coeff", p.VolumetricHeatTransferCoeff},
	}
	for _, c := range checks {
		// NaN fails this comparison too
		if !(c.value > 0) {
			return &ParameterError{Field: c.field, Value: c.value}
		}
	}
	if p.CalculationSteps < 1 {
		return &ParameterError{Field: "calculation_steps", Value: float64(p.CalculationSteps)}
	}
	if p.CalculationSteps > MaxSteps {
		return &ParameterError{Field: "calculation_steps", Value: float64(p.CalculationSteps), Max: MaxSteps}
	}
	return nil
}

// CapacityRates returns the per-unit-area heat capacity flow rates of the
// material and the gas, W/(m²·°C).
func (p Parameters) CapacityRates() (cm, cg float64) {
	cm = (p.MaterialFlowRate / secondsPerHour) * p.MaterialSpecificHeat / p.CrossSectionM2
	if p.IsGasHeatCapacityVolumetric {
		cgVol := p.GasSpecificHeat * 1000                // kJ -> J
		volumetricFlow := p.GasFlowRate / secondsPerHour // m³/h -> m³/s
		cg = cgVol * (volumetricFlow / p.CrossSectionM2)
	} else {
		cg = (p.GasFlowRate / secondsPerHour) * p.GasSpecificHeat / p.CrossSectionM2
	}
	return cm, cg
}

// Calculate evaluates the closed-form steady-state profile of a counter-current
// moving bed. Index 0 of every sequence is the bottom of the bed (Y=0), the
// last index is the top (Y=1).
func Calculate(p Parameters) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}
	cm, cg := p.CapacityRates()
	if cg == 0 {
		return Result{}, ErrDegenerateFlow
	}

	alphaV := p.VolumetricHeatTransferCoeff
	h := p.HeightM
	tIn := p.MaterialInletTemp
	gIn := p.GasInletTemp
	m := cm / cg
	singular := math.Abs(m-1) < singularTolerance

	steps := p.CalculationSteps
	heights := make([]float64, steps+1)
	tMat := make([]float64, steps+1)
	tGas := make([]float64, steps+1)
	deltaT := make([]float64, steps+1)

	var warnings []string
	denom := 0.0
	if !singular {
		exp2 := math.Exp(-(1 - m) * alphaV * h / cm)
		denom = 1 - m*exp2
		if math.Abs(denom) < denomTolerance {
			warnings = append(warnings, fmt.Sprintf("denominator 1-m·exp(-(1-m)·α_v·H/Cm) = %g is close to zero", denom))
		}
	}

	for i := 0; i <= steps; i++ {
		y := float64(i) * (1.0 / float64(steps)) // 0 bottom .. 1 top

		var thetaMat, thetaGas float64
		if singular {
			expTerm := math.Exp(-alphaV * h * (1 - y) / cm)
			thetaMat = gIn + (tIn-gIn)*y*(1-expTerm)
			thetaGas = thetaMat - (tIn-gIn)*(1-expTerm)
		} else {
			exp1 := math.Exp(-(1 - m) * alphaV * h * y / cm)
			a := (tIn - gIn) * (1 - exp1) / denom
			thetaMat = gIn + a
			thetaGas = gIn + m*a
		}

		heights[i] = y * h
		tMat[i] = thetaMat
		tGas[i] = thetaGas
		deltaT[i] = math.Abs(thetaMat - thetaGas)
	}

	q := math.Abs(cm*p.CrossSectionM2*(tMat[0]-tIn)) / 1000
	cMin := math.Min(cm, cg) * p.CrossSectionM2
	drive := math.Abs(tIn - gIn)
	eff := 0.0
	if cMin > 0 && drive != 0 {
		eff = q * 1000 / (cMin * drive) * 100
	}

	if !allFinite(tMat, tGas, deltaT) || !allFinite([]float64{q, eff}) {
		warnings = append(warnings, "profile contains non-finite values")
	}

	return Result{
		VolumetricHeatTransferCoefficient: alphaV,
		TotalHeatTransferKW:               q,
		EfficiencyPct:                     eff,
		MaterialOutletTemp:                tMat[0],
		GasOutletTemp:                     tGas[steps],
		MaterialCapacityRate:              cm,
		GasCapacityRate:                   cg,
		CapacityRatio:                     m,
		Singular:                          singular,
		MeanTemperatureDifference:         stat.Mean(deltaT, nil),
		Heights:                           heights,
		MaterialTemperatures:              tMat,
		GasTemperatures:                   tGas,
		TemperatureDifferences:            deltaT,
		Warnings:                          warnings,
	}, nil
}

// Finite reports whether every number in the result can be serialized.
func (r Result) Finite() bool {
	scalars := []float64{
		r.VolumetricHeatTransferCoefficient, r.TotalHeatTransferKW, r.EfficiencyPct,
		r.MaterialOutletTemp, r.GasOutletTemp, r.MaterialCapacityRate, r.GasCapacityRate,
		r.CapacityRatio, r.MeanTemperatureDifference,
	}
	return allFinite(scalars, r.Heights, r.MaterialTemperatures, r.GasTemperatures, r.TemperatureDifferences)
}

func allFinite(series ...[]float64) bool {
	for _, s := range series {
		if floats.HasNaN(s) {
			return false
		}
		if len(s) > 0 && (math.IsInf(floats.Max(s), 1) || math.IsInf(floats.Min(s), -1)) {
			return false
		}
	}
	return true
}
