package artifact

import (
	"math"

	"github.com/sajari/regression"
)

// LinearRegressor predicts a score from a subset of the feature vector.
// Inputs index into the artifact's FeatureColumns.
type LinearRegressor struct {
	Target       string    `json:"target"`
	Intercept    float64   `json:"intercept"`
	Inputs       []int     `json:"inputs"`
	Coefficients []float64 `json:"coefficients"`
	MeanOnly     bool      `json:"mean_only,omitempty"`
}

// Predict evaluates the regression for x
func (r *LinearRegressor) Predict(x []float64) float64 {
	y := r.Intercept
	for k, idx := range r.Inputs {
		if idx < len(x) {
			y += r.Coefficients[k] * x[idx]
		}
	}
	return y
}

// trainRegressor fits ordinary least squares over the candidate columns that
// vary in x. It degrades to predicting the mean when the system cannot be solved.
func trainRegressor(target string, columns []string, candidates []int, x [][]float64, y []float64) LinearRegressor {
	inputs := make([]int, 0, len(candidates))
	for _, idx := range candidates {
		if varies(x, idx) {
			inputs = append(inputs, idx)
		}
	}

	fallback := LinearRegressor{Target: target, Intercept: mean(y), MeanOnly: true}
	if len(inputs) == 0 || len(y) <= len(inputs)+1 {
		return fallback
	}

	var r regression.Regression
	r.SetObserved(target)
	for k, idx := range inputs {
		r.SetVar(k, columns[idx])
	}
	for i, row := range x {
		vars := make([]float64, len(inputs))
		for k, idx := range inputs {
			vars[k] = row[idx]
		}
		r.Train(regression.DataPoint(y[i], vars))
	}
	if err := r.Run(); err != nil {
		return fallback
	}

	coeffs := r.GetCoeffs()
	if len(coeffs) != len(inputs)+1 {
		return fallback
	}
	for _, c := range coeffs {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fallback
		}
	}

	return LinearRegressor{
		Target:       target,
		Intercept:    coeffs[0],
		Inputs:       inputs,
		Coefficients: coeffs[1:],
	}
}

func varies(x [][]float64, idx int) bool {
	for _, row := range x[1:] {
		if row[idx] != x[0][idx] {
			return true
		}
	}
	return false
}

func mean(v []float64) float64 {
	if len(v) == 0 {
		return 0
	}
	sum := 0.0
	for _, f := range v {
		sum += f
	}
	return sum / float64(len(v))
}
