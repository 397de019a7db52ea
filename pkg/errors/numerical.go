package errors

import (
	"math"
)

// maxReported は1つのエラーに記録する非有限値の上限です。
const maxReported = 10

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// CheckNumericalStability は係数などのベクトルに NaN/Inf が含まれていないかを確認します。
// index は呼び出し側が報告したい位置 (反復回数や行番号) です。
func CheckNumericalStability(operation string, values []float64, index int) error {
	for _, v := range values {
		if !finite(v) {
			return NewNumericalInstabilityError(operation, values, index)
		}
	}
	return nil
}

// CheckMatrix は設計行列や目的変数の全要素を走査し、最初に非有限値を含む行を報告します。
func CheckMatrix(operation string, m interface{ At(int, int) float64 }, rows, cols int) error {
	for i := 0; i < rows; i++ {
		var bad []float64
		for j := 0; j < cols && len(bad) < maxReported; j++ {
			if v := m.At(i, j); !finite(v) {
				bad = append(bad, v)
			}
		}
		if len(bad) > 0 {
			return NewNumericalInstabilityError(operation, bad, i)
		}
	}
	return nil
}
