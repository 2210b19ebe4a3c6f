package artifact

import (
	"math"
	"math/rand"
)

// LogisticClassifier predicts P(home win) from standardized features
type LogisticClassifier struct {
	Weights []float64 `json:"weights"`
	Bias    float64   `json:"bias"`
	Means   []float64 `json:"means"`
	Scales  []float64 `json:"scales"`
}

// PredictProba returns the home win probability for x
func (c *LogisticClassifier) PredictProba(x []float64) float64 {
	z := c.Bias
	for i, w := range c.Weights {
		if i >= len(x) {
			break
		}
		z += w * (x[i] - c.Means[i]) / c.Scales[i]
	}
	return sigmoid(z)
}

type classifierParams struct {
	seed         int64
	iterations   int
	learningRate float64
	l2           float64
}

// trainClassifier fits by full-batch gradient descent. y holds 1 for a home win
// and 0 for an away win.
func trainClassifier(x [][]float64, y []float64, p classifierParams) LogisticClassifier {
	dims := len(x[0])
	means, scales := standardize(x, dims)

	z := make([][]float64, len(x))
	for i, row := range x {
		z[i] = make([]float64, dims)
		for j := range row {
			z[i][j] = (row[j] - means[j]) / scales[j]
		}
	}

	rng := rand.New(rand.NewSource(p.seed))
	weights := make([]float64, dims)
	for j := range weights {
		weights[j] = rng.NormFloat64() * 0.01
	}
	bias := 0.0

	n := float64(len(z))
	grad := make([]float64, dims)
	for iter := 0; iter < p.iterations; iter++ {
		for j := range grad {
			grad[j] = 0
		}
		gradBias := 0.0
		for i, row := range z {
			s := bias
			for j, v := range row {
				s += weights[j] * v
			}
			diff := sigmoid(s) - y[i]
			for j, v := range row {
				grad[j] += diff * v
			}
			gradBias += diff
		}
		for j := range weights {
			weights[j] -= p.learningRate * (grad[j]/n + p.l2*weights[j])
		}
		bias -= p.learningRate * gradBias / n
	}

	return LogisticClassifier{Weights: weights, Bias: bias, Means: means, Scales: scales}
}

// standardize returns column means and standard deviations. Constant columns
// get a scale of 1 so they contribute nothing after centering.
func standardize(x [][]float64, dims int) (means, scales []float64) {
	means = make([]float64, dims)
	scales = make([]float64, dims)
	n := float64(len(x))
	for _, row := range x {
		for j, v := range row {
			means[j] += v
		}
	}
	for j := range means {
		means[j] /= n
	}
	for _, row := range x {
		for j, v := range row {
			d := v - means[j]
			scales[j] += d * d
		}
	}
	for j := range scales {
		scales[j] = math.Sqrt(scales[j] / n)
		if scales[j] < 1e-12 {
			scales[j] = 1
		}
	}
	return means, scales
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}
