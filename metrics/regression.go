// Package metrics holds the error measures used to compare price models.
// Inputs are gonum vectors of true and predicted values in the same space
// (price or logPrice); the Matrix variants accept n×1 model outputs.
package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"

	"github.com/hopus-ml/hopus/pkg/errors"
)

// residuals は yTrue - yPred を返す。長さ0や長さの不一致はエラー
func residuals(op string, yTrue, yPred mat.Vector) ([]float64, error) {
	n := yTrue.Len()
	if n == 0 {
		return nil, errors.NewValueError(op, "empty vector")
	}
	if yPred.Len() != n {
		return nil, errors.NewDimensionError(op, n, yPred.Len(), 0)
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = yTrue.AtVec(i) - yPred.AtVec(i)
	}
	return out, nil
}

// ColumnVector copies an n×1 matrix into a vector.
func ColumnVector(op string, m mat.Matrix) (*mat.VecDense, error) {
	r, c := m.Dims()
	switch {
	case r == 0 || c == 0:
		return nil, errors.NewValueError(op, "empty matrix")
	case c != 1:
		return nil, errors.NewValueError(op, "must be a column vector (n×1 matrix)")
	}
	return mat.NewVecDense(r, mat.Col(nil, 0, m)), nil
}

func columns(op string, yTrue, yPred mat.Matrix) (*mat.VecDense, *mat.VecDense, error) {
	if rt, _ := yTrue.Dims(); rt != 0 {
		if rp, _ := yPred.Dims(); rp != rt {
			return nil, nil, errors.NewDimensionError(op, rt, rp, 0)
		}
	}
	t, err := ColumnVector(op, yTrue)
	if err != nil {
		return nil, nil, err
	}
	p, err := ColumnVector(op, yPred)
	if err != nil {
		return nil, nil, err
	}
	return t, p, nil
}

// MSE は平均二乗誤差。交差検証と実験記録の損失はすべてこれで計算する
func MSE(yTrue, yPred mat.Vector) (float64, error) {
	res, err := residuals("MSE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, r := range res {
		sum += r * r
	}
	return sum / float64(len(res)), nil
}

func MSEMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, p, err := columns("MSEMatrix", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return MSE(t, p)
}

func RMSE(yTrue, yPred mat.Vector) (float64, error) {
	mse, err := MSE(yTrue, yPred)
	if err != nil {
		return 0, errors.Wrap(err, "RMSE")
	}
	return math.Sqrt(mse), nil
}

func MAE(yTrue, yPred mat.Vector) (float64, error) {
	res, err := residuals("MAE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	var sum float64
	for _, r := range res {
		sum += math.Abs(r)
	}
	return sum / float64(len(res)), nil
}

// R2Score は決定係数。yTrue が定数のときは定義できないためエラー
func R2Score(yTrue, yPred mat.Vector) (float64, error) {
	res, err := residuals("R2Score", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	truth := mat.Col(nil, 0, yTrue)
	mean := stat.Mean(truth, nil)

	var tss, rss float64
	for i, t := range truth {
		tss += (t - mean) * (t - mean)
		rss += res[i] * res[i]
	}
	if tss == 0 {
		return 0, errors.NewValueError("R2Score", "total sum of squares is zero (no variance in yTrue)")
	}
	return 1 - rss/tss, nil
}

func R2ScoreMatrix(yTrue, yPred mat.Matrix) (float64, error) {
	t, p, err := columns("R2ScoreMatrix", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	return R2Score(t, p)
}

// MAPE は平均絶対パーセント誤差 (0-100)。yTrue が0の物件は除いて平均する
func MAPE(yTrue, yPred mat.Vector) (float64, error) {
	res, err := residuals("MAPE", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	var sum float64
	var n int
	for i, r := range res {
		t := yTrue.AtVec(i)
		if t == 0 {
			continue
		}
		sum += math.Abs(r / t)
		n++
	}
	if n == 0 {
		return 0, errors.NewValueError("MAPE", "all yTrue values are zero")
	}
	return 100 * sum / float64(n), nil
}

// ExplainedVarianceScore は 1 - Var(yTrue-yPred)/Var(yTrue)。R2Score と違い、
// 予測の一定のずれ (バイアス) では下がらない
func ExplainedVarianceScore(yTrue, yPred mat.Vector) (float64, error) {
	res, err := residuals("ExplainedVarianceScore", yTrue, yPred)
	if err != nil {
		return 0, err
	}
	_, varTrue := stat.PopMeanVariance(mat.Col(nil, 0, yTrue), nil)
	if varTrue == 0 {
		return 0, errors.NewValueError("ExplainedVarianceScore", "no variance in yTrue")
	}
	_, varRes := stat.PopMeanVariance(res, nil)
	return 1 - varRes/varTrue, nil
}
