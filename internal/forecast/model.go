package forecast

import (
	"errors"
	"fmt"
	"math"
	"time"
)

// Fitting failures are internal: the forecaster catches them and falls
// back to the mean-based forecast, they never reach API callers.
var (
	errTooFewPoints   = errors.New("not enough daily points to fit model")
	errSingularSystem = errors.New("normal equations are singular")
	errBadSeries      = errors.New("series contains non-finite values")
)

const (
	// changepointSensitivity mirrors Prophet's changepoint_prior_scale.
	// Its inverse is the ridge penalty applied to trend changepoint deltas.
	changepointSensitivity = 0.05

	// intervalZ is the two-sided ~80% interval multiplier on residual std
	intervalZ = 1.28

	weeklyMinSpanDays = 14
	yearlyMinSpanDays = 365
	yearlyOrder       = 3
	maxChangepoints   = 5
)

// seasonalModel is a least-squares demand model with a piecewise-linear
// trend, weekly and yearly seasonality, and a binary event regressor.
type seasonalModel struct {
	origin       time.Time
	coef         []float64
	residualStd  float64
	changepoints []float64
	useWeekly    bool
	useYearly    bool
	useEvent     bool
}

// fitSeasonalModel trains the model on an aggregated daily series.
func fitSeasonalModel(daily []DailyPoint) (*seasonalModel, error) {
	n := len(daily)
	if n < 3 {
		return nil, errTooFewPoints
	}

	origin := daily[0].Date
	spanDays := daily[n-1].Date.Sub(origin).Hours() / 24

	m := &seasonalModel{
		origin:    origin,
		useWeekly: spanDays >= weeklyMinSpanDays,
		useYearly: spanDays >= yearlyMinSpanDays,
	}

	// The event column is only usable when it varies in the sample;
	// an all-zero column makes the normal equations singular.
	for _, p := range daily {
		if p.IsEvent {
			m.useEvent = true
			break
		}
	}

	// Changepoints evenly spread over the first 80% of history,
	// capped so short series keep a near-linear trend.
	numChangepoints := n / 10
	if numChangepoints > maxChangepoints {
		numChangepoints = maxChangepoints
	}
	for i := 1; i <= numChangepoints; i++ {
		m.changepoints = append(m.changepoints, spanDays*0.8*float64(i)/float64(numChangepoints+1))
	}

	cols := m.featureCount()
	if n < cols {
		return nil, fmt.Errorf("%w: %d points for %d terms", errTooFewPoints, n, cols)
	}

	// Build the design matrix and response vector.
	design := make([][]float64, n)
	response := make([]float64, n)
	for i, p := range daily {
		if math.IsNaN(p.Quantity) || math.IsInf(p.Quantity, 0) {
			return nil, errBadSeries
		}
		design[i] = m.features(p.Date, p.IsEvent)
		response[i] = p.Quantity
	}

	// Ridge penalty on changepoint deltas only; everything else is
	// ordinary least squares.
	penalty := make([]float64, cols)
	for i := range m.changepoints {
		penalty[2+i] = 1 / changepointSensitivity
	}

	coef, err := solveNormalEquations(design, response, penalty)
	if err != nil {
		return nil, err
	}
	m.coef = coef

	var sse float64
	for i, p := range daily {
		resid := p.Quantity - dot(design[i], coef)
		sse += resid * resid
	}
	m.residualStd = math.Sqrt(sse / float64(n))

	return m, nil
}

// predict returns the point estimate and two-sided interval for a day.
func (m *seasonalModel) predict(date time.Time, isEvent bool) (yhat, lower, upper float64) {
	yhat = dot(m.features(date, isEvent), m.coef)
	lower = yhat - intervalZ*m.residualStd
	upper = yhat + intervalZ*m.residualStd
	return yhat, lower, upper
}

func (m *seasonalModel) featureCount() int {
	cols := 2 + len(m.changepoints) // intercept + trend + changepoint deltas
	if m.useWeekly {
		cols += 6
	}
	if m.useYearly {
		cols += 2 * yearlyOrder
	}
	if m.useEvent {
		cols++
	}
	return cols
}

func (m *seasonalModel) features(date time.Time, isEvent bool) []float64 {
	t := date.Sub(m.origin).Hours() / 24

	row := make([]float64, 0, m.featureCount())
	row = append(row, 1, t)

	for _, cp := range m.changepoints {
		row = append(row, math.Max(0, t-cp))
	}

	if m.useWeekly {
		// Weekday dummies with Sunday as the baseline
		weekday := int(date.Weekday())
		for d := 1; d <= 6; d++ {
			if weekday == d {
				row = append(row, 1)
			} else {
				row = append(row, 0)
			}
		}
	}

	if m.useYearly {
		yearPos := 2 * math.Pi * t / 365.25
		for k := 1; k <= yearlyOrder; k++ {
			row = append(row, math.Sin(float64(k)*yearPos), math.Cos(float64(k)*yearPos))
		}
	}

	if m.useEvent {
		if isEvent {
			row = append(row, 1)
		} else {
			row = append(row, 0)
		}
	}

	return row
}

// solveNormalEquations solves (XtX + diag(penalty)) b = Xty by Gaussian
// elimination with partial pivoting.
func solveNormalEquations(design [][]float64, response, penalty []float64) ([]float64, error) {
	cols := len(design[0])

	xtx := make([][]float64, cols)
	xty := make([]float64, cols)
	for i := 0; i < cols; i++ {
		xtx[i] = make([]float64, cols)
	}

	for r := range design {
		row := design[r]
		for i := 0; i < cols; i++ {
			for j := i; j < cols; j++ {
				xtx[i][j] += row[i] * row[j]
			}
			xty[i] += row[i] * response[r]
		}
	}
	for i := 0; i < cols; i++ {
		for j := 0; j < i; j++ {
			xtx[i][j] = xtx[j][i]
		}
		xtx[i][i] += penalty[i]
	}

	// Forward elimination with partial pivoting
	for col := 0; col < cols; col++ {
		pivot := col
		for r := col + 1; r < cols; r++ {
			if math.Abs(xtx[r][col]) > math.Abs(xtx[pivot][col]) {
				pivot = r
			}
		}
		if math.Abs(xtx[pivot][col]) < 1e-10 {
			return nil, errSingularSystem
		}
		xtx[col], xtx[pivot] = xtx[pivot], xtx[col]
		xty[col], xty[pivot] = xty[pivot], xty[col]

		for r := col + 1; r < cols; r++ {
			factor := xtx[r][col] / xtx[col][col]
			for c := col; c < cols; c++ {
				xtx[r][c] -= factor * xtx[col][c]
			}
			xty[r] -= factor * xty[col]
		}
	}

	// Back substitution
	coef := make([]float64, cols)
	for i := cols - 1; i >= 0; i-- {
		sum := xty[i]
		for j := i + 1; j < cols; j++ {
			sum -= xtx[i][j] * coef[j]
		}
		coef[i] = sum / xtx[i][i]
		if math.IsNaN(coef[i]) || math.IsInf(coef[i], 0) {
			return nil, errSingularSystem
		}
	}

	return coef, nil
}

func dot(a, b []float64) float64 {
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
