package application

import (
	"errors"
	"math"

	"materialroi/internal/analytics/domain"
)

// forecastDegree est le degré du polynôme de tendance
const forecastDegree = 2

// forecastHorizon est le nombre de mois projetés après le dernier mois observé
const forecastHorizon = 2

var errSingularSystem = errors.New("singular normal equations")

// PolyFit ajuste un polynôme de degré deg aux points (x, y) par moindres carrés.
// Les coefficients sont retournés du degré 0 au degré deg.
func PolyFit(x, y []float64, deg int) ([]float64, error) {
	if len(x) != len(y) {
		return nil, errors.New("x and y must have the same length")
	}
	if len(x) == 0 {
		return nil, errors.New("no points to fit")
	}
	if deg > len(x)-1 {
		deg = len(x) - 1
	}
	n := deg + 1

	// équations normales (XᵀX) c = Xᵀy
	a := make([][]float64, n)
	for i := range a {
		a[i] = make([]float64, n+1)
	}
	for k := range x {
		pow := make([]float64, 2*n-1)
		pow[0] = 1
		for p := 1; p < len(pow); p++ {
			pow[p] = pow[p-1] * x[k]
		}
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				a[i][j] += pow[i+j]
			}
			a[i][n] += pow[i] * y[k]
		}
	}

	// élimination de Gauss avec pivot partiel
	for col := 0; col < n; col++ {
		pivot := col
		for r := col + 1; r < n; r++ {
			if math.Abs(a[r][col]) > math.Abs(a[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(a[pivot][col]) < 1e-12 {
			return nil, errSingularSystem
		}
		a[col], a[pivot] = a[pivot], a[col]
		for r := col + 1; r < n; r++ {
			f := a[r][col] / a[col][col]
			for c := col; c <= n; c++ {
				a[r][c] -= f * a[col][c]
			}
		}
	}

	coeffs := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := a[i][n]
		for j := i + 1; j < n; j++ {
			sum -= a[i][j] * coeffs[j]
		}
		coeffs[i] = sum / a[i][i]
	}
	return coeffs, nil
}

// PolyEval évalue le polynôme (coefficients du degré 0 au degré n) en x
func PolyEval(coeffs []float64, x float64) float64 {
	var y float64
	for i := len(coeffs) - 1; i >= 0; i-- {
		y = y*x + coeffs[i]
	}
	return y
}

// ForecastSeries ajuste une tendance quadratique sur la série mensuelle et projette
// les deux mois suivants. Une série vide ou dégénérée ne produit pas de projection.
func ForecastSeries(name string, points []domain.MonthlyPoint, value func(domain.MonthlyPoint) float64) domain.Forecast {
	forecast := domain.Forecast{Series: name}
	if len(points) == 0 {
		return forecast
	}

	x := make([]float64, len(points))
	y := make([]float64, len(points))
	for i, p := range points {
		x[i] = float64(i)
		y[i] = value(p)
	}

	coeffs, err := PolyFit(x, y, forecastDegree)
	if err != nil {
		return forecast
	}

	forecast.Trend = make([]domain.ForecastPoint, len(points))
	for i, p := range points {
		forecast.Trend[i] = domain.ForecastPoint{Month: p.Month, Value: PolyEval(coeffs, x[i])}
	}

	last := points[len(points)-1].Month
	forecast.Projected = make([]domain.ForecastPoint, forecastHorizon)
	for h := 1; h <= forecastHorizon; h++ {
		forecast.Projected[h-1] = domain.ForecastPoint{
			Month: last.AddMonths(h),
			Value: PolyEval(coeffs, float64(len(points)-1+h)),
		}
	}
	return forecast
}
