package config

import (
	"fmt"

	"HeatExchange/internal/calc/exchanger"

	"gopkg.in/ini.v1"
)

// LoadDefaults overlays the values found in an INI file on top of
// exchanger.DefaultInput. Keys that are absent keep their default; a key
// that is present but malformed is an error.
//
//	[parameters]
//	height = 2
//	is_gas_heat_capacity_volumetric = true
func LoadDefaults(source interface{}) (exchanger.Input, error) {
	in := exchanger.DefaultInput()
	if path, ok := source.(string); source == nil || ok && path == "" {
		return in, nil
	}
	file, err := ini.Load(source)
	if err != nil {
		return in, err
	}

	mat := &section{s: file.Section("material")}
	in.Material = exchanger.Material{
		Name:         mat.str("name", in.Material.Name),
		Density:      mat.float("density", in.Material.Density),
		SpecificHeat: mat.float("specific_heat", in.Material.SpecificHeat),
		ParticleSize: mat.float("particle_size", in.Material.ParticleSize),
		Porosity:     mat.float("porosity", in.Material.Porosity),
	}

	gas := &section{s: file.Section("gas")}
	in.Gas = exchanger.Gas{
		Name:                gas.str("name", in.Gas.Name),
		Density:             gas.float("density", in.Gas.Density),
		SpecificHeat:        gas.float("specific_heat", in.Gas.SpecificHeat),
		Viscosity:           gas.float("viscosity", in.Gas.Viscosity),
		ThermalConductivity: gas.float("thermal_conductivity", in.Gas.ThermalConductivity),
	}

	p := &section{s: file.Section("parameters")}
	d := in.Parameters
	in.Parameters = exchanger.Parameters{
		HeightM:                     p.float("height", d.HeightM),
		CrossSectionM2:              p.float("cross_section", d.CrossSectionM2),
		MaterialFlowRate:            p.float("material_flow_rate", d.MaterialFlowRate),
		GasFlowRate:                 p.float("gas_flow_rate", d.GasFlowRate),
		MaterialInletTemp:           p.float("material_inlet_temp", d.MaterialInletTemp),
		GasInletTemp:                p.float("gas_inlet_temp", d.GasInletTemp),
		MaterialSpecificHeat:        p.float("material_specific_heat", d.MaterialSpecificHeat),
		GasSpecificHeat:             p.float("gas_specific_heat", d.GasSpecificHeat),
		IsGasHeatCapacityVolumetric: p.boolean("is_gas_heat_capacity_volumetric", d.IsGasHeatCapacityVolumetric),
		VolumetricHeatTransferCoeff: p.float("volumetric_heat_transfer_coeff", d.VolumetricHeatTransferCoeff),
		CalculationSteps:            p.integer("calculation_steps", d.CalculationSteps),
	}

	top := file.Section("")
	in.Name = top.Key("name").MustString(in.Name)
	in.Description = top.Key("description").MustString(in.Description)

	for _, s := range []*section{mat, gas, p} {
		if s.err != nil {
			return exchanger.DefaultInput(), s.err
		}
	}
	return in, nil
}

// section reads typed keys and keeps the first parse error.
type section struct {
	s   *ini.Section
	err error
}

func (s *section) str(name, def string) string {
	return s.s.Key(name).MustString(def)
}

func (s *section) float(name string, def float64) float64 {
	if !s.s.HasKey(name) {
		return def
	}
	v, err := s.s.Key(name).Float64()
	s.fail(name, err)
	return v
}

func (s *section) integer(name string, def int) int {
	if !s.s.HasKey(name) {
		return def
	}
	v, err := s.s.Key(name).Int()
	s.fail(name, err)
	return v
}

func (s *section) boolean(name string, def bool) bool {
	if !s.s.HasKey(name) {
		return def
	}
	v, err := s.s.Key(name).Bool()
	s.fail(name, err)
	return v
}

func (s *section) fail(name string, err error) {
	if err != nil && s.err == nil {
		s.err = fmt.Errorf("[%s] %s: %w", s.s.Name(), name, err)
	}
}
