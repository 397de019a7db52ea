// Package errors はパイプライン全体で共有するエラー型と警告の仕組みです。
//
// 読み込み・前処理・学習・評価の各段階は、ここで定義する型付きエラーを
// cockroachdb/errors のスタックトレース付きで返します。呼び出し側は As で型を取り出し、
// pkg/log はこれらを zerolog の構造化フィールドとして出力します。
package errors

import (
	"fmt"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

const prefix = "hopus: "

// 共通のセンチネルエラー。Is で判定します。
var (
	// ErrEmptyData は行や列が0件の入力を受け取ったことを示します。
	ErrEmptyData = New("empty data")

	// ErrSingularMatrix は正規方程式が解けなかったことを示します。
	ErrSingularMatrix = New("singular matrix")

	// ErrNoRows は前処理やフィルタで全ての物件が除外されたことを示します。
	ErrNoRows = New("no rows left after filtering")
)

// NotFittedError は Fit 前に Predict などを呼んだ場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf(prefix+"%s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (e *NotFittedError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", "NotFittedError").
		Str("model_name", e.ModelName).
		Str("method", e.Method)
}

func NewNotFittedError(modelName, method string) error {
	return errors.WithStack(&NotFittedError{ModelName: modelName, Method: method})
}

// DimensionError は行数または特徴量数が学習時や相手の行列と一致しない場合のエラーです。
// Axis は 0 が行、1 が特徴量です。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int
}

func (e *DimensionError) axisName() string {
	if e.Axis == 0 {
		return "rows"
	}
	return "features"
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf(prefix+"%s: dimension mismatch on axis %d (%s). Expected %d, got %d",
		e.Op, e.Axis, e.axisName(), e.Expected, e.Got)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (e *DimensionError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", "DimensionError").
		Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", e.axisName())
}

func NewDimensionError(op string, expected, got, axis int) error {
	return errors.WithStack(&DimensionError{Op: op, Expected: expected, Got: got, Axis: axis})
}

// ValidationError はハイパーパラメータ、設定ファイル、CLI 引数の値が受け付けられない場合のエラーです。
// ParamName には "alpha" や "experiment.n_splits" のような利用者が指定した名前が入ります。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     any
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf(prefix+"validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (e *ValidationError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", "ValidationError").
		Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value)
}

func NewValidationError(param, reason string, value any) error {
	return errors.WithStack(&ValidationError{ParamName: param, Reason: reason, Value: value})
}

// ValueError は引数の組み合わせや中身が処理できない場合のエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return prefix + e.Op + ": " + e.Message
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (e *ValueError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", "ValueError").
		Str("operation", e.Op).
		Str("message", e.Message)
}

func NewValueError(op, message string) error {
	return errors.WithStack(&ValueError{Op: op, Message: message})
}

// ColumnError はフレームに列がない、または列の型が想定と違う場合のエラーです。
type ColumnError struct {
	Op     string
	Column string
	Reason string
}

func (e *ColumnError) Error() string {
	return fmt.Sprintf(prefix+"%s: column %q: %s", e.Op, e.Column, e.Reason)
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (e *ColumnError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", "ColumnError").
		Str("operation", e.Op).
		Str("column", e.Column).
		Str("reason", e.Reason)
}

func NewColumnError(op, column, reason string) error {
	return errors.WithStack(&ColumnError{Op: op, Column: column, Reason: reason})
}

// ModelError はモデルの構築・保存・復元の失敗を表し、原因のエラーを保持します。
type ModelError struct {
	Op   string
	Kind string
	Err  error
}

func (e *ModelError) Error() string {
	if e.Err == nil {
		return prefix + e.Op + ": " + e.Kind
	}
	return fmt.Sprintf(prefix+"%s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *ModelError) Unwrap() error { return e.Err }

func NewModelError(op, kind string, err error) error {
	return errors.WithStack(&ModelError{Op: op, Kind: kind, Err: err})
}

// NumericalInstabilityError は入力や係数に NaN/Inf が現れた場合のエラーです。
// Iteration は問題の行番号 (CheckMatrix) または呼び出し側が渡した位置です。
type NumericalInstabilityError struct {
	Operation string
	Values    []float64
	Iteration int
}

func (e *NumericalInstabilityError) Error() string {
	shown := e.Values
	if len(shown) > 5 {
		shown = shown[:5]
	}
	parts := make([]string, 0, len(shown)+1)
	for _, v := range shown {
		parts = append(parts, fmt.Sprintf("%.6g", v))
	}
	if len(e.Values) > len(shown) {
		parts = append(parts, "...")
	}
	return fmt.Sprintf(prefix+"numerical instability detected in %s at index %d. Values: [%s]",
		e.Operation, e.Iteration, strings.Join(parts, ", "))
}

// MarshalZerologObject implements zerolog.LogObjectMarshaler.
func (e *NumericalInstabilityError) MarshalZerologObject(ev *zerolog.Event) {
	ev.Str("type", "NumericalInstabilityError").
		Str("operation", e.Operation).
		Int("index", e.Iteration).
		Floats64("values", e.Values)
}

func NewNumericalInstabilityError(operation string, values []float64, index int) error {
	return errors.WithStack(&NumericalInstabilityError{Operation: operation, Values: values, Iteration: index})
}

// 以下は cockroachdb/errors の薄いラッパーです。パッケージ名の衝突を避けて
// 呼び出し側がこのパッケージだけを import すれば済むようにしています。

func Is(err, target error) bool { return errors.Is(err, target) }

func As(err error, target any) bool { return errors.As(err, target) }

func Wrap(err error, message string) error { return errors.Wrap(err, message) }

func Wrapf(err error, format string, args ...any) error { return errors.Wrapf(err, format, args...) }

func New(message string) error { return errors.New(message) }

func Newf(format string, args ...any) error { return errors.Newf(format, args...) }

func WithStack(err error) error { return errors.WithStack(err) }
