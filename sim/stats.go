package sim

import "github.com/nfagan/slime-mold/telemetry"

// Summary measures the field for a telemetry window. cells is reused for the
// per-cell intensities when large enough.
func (s *Simulation) Summary(coverageThreshold float32, cells []float64) telemetry.FieldSummary {
	if !s.initialized {
		return telemetry.FieldSummary{}
	}
	st := s.main.Summarize(coverageThreshold)
	return telemetry.FieldSummary{
		Mass:            float64(st.Mass),
		MeanR:           float64(st.Mean.X),
		MeanG:           float64(st.Mean.Y),
		MeanB:           float64(st.Mean.Z),
		Coverage:        float64(st.Coverage),
		CellIntensities: s.main.Intensities(cells),
		PerturbActive:   s.perturb.State() == PerturbActive,
		Agents:          len(s.agents),
	}
}
