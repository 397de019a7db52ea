// Package parallel fans row ranges out over the CPU cores. Prediction for
// KNN and the residual pass of the linear models use it.
package parallel

import (
	"runtime"
	"sync"
)

// DefaultThreshold は並列化する最小行数。これ以下ではゴルーチンを起動しない
const DefaultThreshold = 512

// chunks は [0, items) を最大 workers 個の連続区間に分ける
func chunks(items, workers int) [][2]int {
	if workers > items {
		workers = items
	}
	if workers < 1 {
		workers = 1
	}
	size := (items + workers - 1) / workers
	out := make([][2]int, 0, workers)
	for start := 0; start < items; start += size {
		out = append(out, [2]int{start, min(start+size, items)})
	}
	return out
}

// Parallelize は区間ごとに fn(start, end) を並行に呼び、全て終わるまで待つ。
// fn は互いに重ならない区間を受け取るので、出力スライスへの書き込みに排他は要らない
func Parallelize(items int, fn func(start, end int)) {
	if items <= 0 {
		return
	}
	var wg sync.WaitGroup
	for _, c := range chunks(items, runtime.NumCPU()) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			fn(c[0], c[1])
		}()
	}
	wg.Wait()
}

// ParallelizeWithThreshold は items が threshold 以下なら fn(0, items) を一度だけ呼ぶ
func ParallelizeWithThreshold(items, threshold int, fn func(start, end int)) {
	switch {
	case items <= 0:
	case items <= threshold:
		fn(0, items)
	default:
		Parallelize(items, fn)
	}
}
