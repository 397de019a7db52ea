package linear

import (
	"math/rand/v2"
	"testing"

	"gonum.org/v1/gonum/mat"
)

// createBenchmarkData は y = 1 + Σ 0.5(j+1)·x_j + ノイズ のデータを生成する
func createBenchmarkData(rows, cols int) (*mat.Dense, *mat.Dense) {
	// シードを固定して再現性を確保
	rng := rand.New(rand.NewPCG(42, 42))

	X := mat.NewDense(rows, cols, nil)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			X.Set(i, j, rng.Float64()*2.0-1.0)
		}
	}

	y := mat.NewDense(rows, 1, nil)
	for i := 0; i < rows; i++ {
		sum := 1.0
		for j := 0; j < cols; j++ {
			sum += X.At(i, j) * float64(j+1) * 0.5
		}
		sum += (rng.Float64() - 0.5) * 0.1
		y.Set(i, 0, sum)
	}
	return X, y
}

func BenchmarkLinearRegressionFit(b *testing.B) {
	sizes := []struct {
		name string
		rows int
		cols int
	}{
		{"Small_100x10", 100, 10},
		{"Medium_2000x10", 2000, 10},
		{"Large_10000x20", 10000, 20},
	}

	for _, size := range sizes {
		b.Run(size.name, func(b *testing.B) {
			X, y := createBenchmarkData(size.rows, size.cols)

			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if err := NewLinearRegression().Fit(X, y); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkRidgeFit(b *testing.B) {
	X, y := createBenchmarkData(10000, 20)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := NewRidge(WithAlpha(0.5)).Fit(X, y); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkInterceptColumn は切片列の追加のみを測定する
func BenchmarkInterceptColumn(b *testing.B) {
	X, _ := createBenchmarkData(10000, 20)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = withInterceptColumn(X)
	}
}
