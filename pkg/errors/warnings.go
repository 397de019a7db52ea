package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/rs/zerolog"
)

// 警告は処理を止めずに通知だけ行う問題 (列の補完、標準偏差が定義できない集計など) を表します。
// pkg/log が読み込まれると SetZerologWarnFunc 経由で構造化ログに流れます。
var (
	warnMu      sync.RWMutex
	warnHandler = func(w error) { log.Printf("hopus-warning: %v", w) }
	warnLogger  func(w error)
)

// SetWarningHandler は pkg/log を使わない場合の警告の受け口を差し替えます。
//
//	errors.SetWarningHandler(func(error) {}) // 警告を捨てる
func SetWarningHandler(handler func(w error)) {
	warnMu.Lock()
	warnHandler = handler
	warnMu.Unlock()
}

// SetZerologWarnFunc は pkg/log から呼ばれ、警告をロガーへ転送する関数を登録します。
func SetZerologWarnFunc(fn func(w error)) {
	warnMu.Lock()
	warnLogger = fn
	warnMu.Unlock()
}

// Warn は登録済みのロガー、なければハンドラへ警告を渡します。
func Warn(w error) {
	warnMu.RLock()
	logger, handler := warnLogger, warnHandler
	warnMu.RUnlock()

	switch {
	case logger != nil:
		logger(w)
	case handler != nil:
		handler(w)
	}
}

// DataConversionWarning は列の値を別の型として読み替えた、または欠損として扱ったことを示します。
type DataConversionWarning struct {
	Column   string
	FromType string
	ToType   string
	Reason   string
}

func (w *DataConversionWarning) Error() string {
	if w.Column == "" {
		return fmt.Sprintf("data converted from %s to %s. Reason: %s", w.FromType, w.ToType, w.Reason)
	}
	return fmt.Sprintf("column %q converted from %s to %s. Reason: %s", w.Column, w.FromType, w.ToType, w.Reason)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (w *DataConversionWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("type", "DataConversionWarning").
		Str("column", w.Column).
		Str("from_type", w.FromType).
		Str("to_type", w.ToType).
		Str("reason", w.Reason)
}

func NewDataConversionWarning(column, from, to, reason string) *DataConversionWarning {
	return &DataConversionWarning{Column: column, FromType: from, ToType: to, Reason: reason}
}

// UndefinedMetricWarning は指標が定義できず、代わりに Result を返したことを示します。
// 実験が1回だけのときの標準偏差などが該当します。
type UndefinedMetricWarning struct {
	Metric    string
	Condition string
	Result    float64
}

func (w *UndefinedMetricWarning) Error() string {
	return fmt.Sprintf("'%s' is ill-defined and being set to %f due to %s.", w.Metric, w.Result, w.Condition)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("type", "UndefinedMetricWarning").
		Str("metric", w.Metric).
		Str("condition", w.Condition).
		Float64("result", w.Result)
}

func NewUndefinedMetricWarning(metric, condition string, result float64) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Condition: condition, Result: result}
}
