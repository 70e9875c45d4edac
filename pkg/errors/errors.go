// Package errors はプロジェクト全体のエラーハンドリングと警告システムを提供します。
// scikit-learn / fairlearn の警告・例外システムにインスパイアされており、
// 公平性パイプラインの各段階（ロード・クリーニング・エンコード・学習・緩和）で
// 発生する構造化されたエラー情報を提供します。
package errors

import (
	"fmt"
	"log"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
)

// ===========================================================================
//
//	グローバル警告ハンドリング
//
// ===========================================================================
var (
	warningMutex   sync.Mutex
	warningHandler = func(w error) {
		// デフォルトのハンドラは標準エラー出力にログを出す
		log.Printf("aies-Warning: %v\n", w)
	}
	// zerologロガー（循環importを避けるため遅延初期化）
	zerologWarnFunc func(warning error)
)

// SetWarningHandler はライブラリ全体の警告ハンドラを設定し、直前のハンドラを返します。
// これにより、ConvergenceWarningなどのカスタム警告の処理方法を制御できます。
// 一時的に差し替える場合は、返されたハンドラを後で復元すること。
//
// 例:
//
//	prev := errors.SetWarningHandler(func(w error) {
//	    // 警告を無視する
//	})
//	defer errors.SetWarningHandler(prev)
func SetWarningHandler(handler func(w error)) (prev func(w error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	prev = warningHandler
	warningHandler = handler
	return prev
}

// SetZerologWarnFunc はzerolog警告関数を設定します（循環importを避けるため）。
func SetZerologWarnFunc(warnFunc func(warning error)) {
	warningMutex.Lock()
	defer warningMutex.Unlock()
	zerologWarnFunc = warnFunc
}

// Warn は警告を発生させます。
// zerologが利用可能な場合は構造化ログとして出力し、そうでなければ従来のハンドラを使用します。
func Warn(w error) {
	warningMutex.Lock()
	defer warningMutex.Unlock()

	if zerologWarnFunc != nil {
		zerologWarnFunc(w)
		return
	}

	if warningHandler != nil {
		warningHandler(w)
	}
}

// ===========================================================================
//
//	警告型
//
// ===========================================================================

// ConvergenceWarning は反復アルゴリズムが要求された許容値まで収束しなかった
// 場合に発生する警告です。公平性緩和では、達成できた最良の選択率ギャップを
// BestGap として保持します。呼び出し側はこの警告を成功として扱ってはいけません。
type ConvergenceWarning struct {
	Algorithm  string
	Iterations int
	Tolerance  float64
	BestGap    float64
	Message    string
}

func (w *ConvergenceWarning) Error() string {
	if w.Message != "" {
		return fmt.Sprintf("%s failed to converge after %d iterations: %s", w.Algorithm, w.Iterations, w.Message)
	}
	return fmt.Sprintf("%s failed to reach tolerance %g after %d iterations (best gap %g). Consider increasing max_iter or relaxing eps.",
		w.Algorithm, w.Tolerance, w.Iterations, w.BestGap)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *ConvergenceWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("algorithm", w.Algorithm).
		Int("iterations", w.Iterations).
		Float64("tolerance", w.Tolerance).
		Float64("best_gap", w.BestGap).
		Str("message", w.Message).
		Str("type", "ConvergenceWarning")
}

// NewConvergenceWarning は新しいConvergenceWarningを作成します。
func NewConvergenceWarning(algorithm string, iterations int, tolerance, bestGap float64) *ConvergenceWarning {
	return &ConvergenceWarning{Algorithm: algorithm, Iterations: iterations, Tolerance: tolerance, BestGap: bestGap}
}

// UndefinedMetricWarning は評価指標が計算できない場合に発生する警告です。
// 例えば、あるグループに正例が一つも存在しない状態で真陽性率を求めた場合など。
type UndefinedMetricWarning struct {
	Metric    string
	Group     string
	Condition string
}

func (w *UndefinedMetricWarning) Error() string {
	if w.Group != "" {
		return fmt.Sprintf("'%s' is undefined for group '%s' due to %s.", w.Metric, w.Group, w.Condition)
	}
	return fmt.Sprintf("'%s' is undefined due to %s.", w.Metric, w.Condition)
}

// MarshalZerologObject はzerologのイベントに構造化された警告情報を追加します。
func (w *UndefinedMetricWarning) MarshalZerologObject(e *zerolog.Event) {
	e.Str("metric", w.Metric).
		Str("group", w.Group).
		Str("condition", w.Condition).
		Str("type", "UndefinedMetricWarning")
}

// NewUndefinedMetricWarning は新しいUndefinedMetricWarningを作成します。
func NewUndefinedMetricWarning(metric, group, condition string) *UndefinedMetricWarning {
	return &UndefinedMetricWarning{Metric: metric, Group: group, Condition: condition}
}

// ===========================================================================
//
//	構造化されたエラー型
//
// ===========================================================================

// NotFittedError はモデルが未学習の状態で `Predict` や `Transform` を呼び出した場合のエラーです。
type NotFittedError struct {
	ModelName string
	Method    string
}

func (e *NotFittedError) Error() string {
	return fmt.Sprintf("aies: %s: this model is not fitted yet. Call Fit() before using %s()", e.ModelName, e.Method)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NotFittedError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("model_name", e.ModelName).
		Str("method", e.Method).
		Str("type", "NotFittedError")
}

// NewNotFittedError は新しいNotFittedErrorを作成し、スタックトレースを付与します。
func NewNotFittedError(modelName, method string) error {
	err := &NotFittedError{ModelName: modelName, Method: method}
	return errors.WithStack(err)
}

// SchemaError は入力テーブルのスキーマが要求と一致しない場合のエラーです。
// 必須フィールドの欠落、ヘッダの重複、エンコード時の未知カテゴリなどを表します。
// 実行は継続できず、そのランは中断されます。
type SchemaError struct {
	Op     string
	Field  string
	Reason string
}

func (e *SchemaError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("aies: %s: schema error on field '%s': %s", e.Op, e.Field, e.Reason)
	}
	return fmt.Sprintf("aies: %s: schema error: %s", e.Op, e.Reason)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *SchemaError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("field", e.Field).
		Str("reason", e.Reason).
		Str("type", "SchemaError")
}

// NewSchemaError は新しいSchemaErrorを作成し、スタックトレースを付与します。
func NewSchemaError(op, field, reason string) error {
	err := &SchemaError{Op: op, Field: field, Reason: reason}
	return errors.WithStack(err)
}

// DataQualityError はフィルタリング・行削除の後に残ったデータがモデルの学習に
// 不十分な場合のエラーです。残存行数を保持し、呼び出し側に報告されます。
type DataQualityError struct {
	Op        string
	Reason    string
	RowsLeft  int
	RowsTotal int
}

func (e *DataQualityError) Error() string {
	return fmt.Sprintf("aies: %s: insufficient data after cleaning: %s (%d of %d rows remain)",
		e.Op, e.Reason, e.RowsLeft, e.RowsTotal)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DataQualityError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("reason", e.Reason).
		Int("rows_left", e.RowsLeft).
		Int("rows_total", e.RowsTotal).
		Str("type", "DataQualityError")
}

// NewDataQualityError は新しいDataQualityErrorを作成し、スタックトレースを付与します。
func NewDataQualityError(op, reason string, rowsLeft, rowsTotal int) error {
	err := &DataQualityError{Op: op, Reason: reason, RowsLeft: rowsLeft, RowsTotal: rowsTotal}
	return errors.WithStack(err)
}

// NameCollisionError はカテゴリ変数の展開で、サニタイズ後の列名が既存の列名と
// 衝突した場合のエラーです。黙って上書きせず、必ず報告されます。
type NameCollisionError struct {
	Op       string
	Name     string
	FirstCol string
	OtherCol string
}

func (e *NameCollisionError) Error() string {
	return fmt.Sprintf("aies: %s: sanitized column name '%s' collides ('%s' vs '%s')",
		e.Op, e.Name, e.FirstCol, e.OtherCol)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *NameCollisionError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("operation", e.Op).
		Str("name", e.Name).
		Str("first_column", e.FirstCol).
		Str("other_column", e.OtherCol).
		Str("type", "NameCollisionError")
}

// NewNameCollisionError は新しいNameCollisionErrorを作成し、スタックトレースを付与します。
func NewNameCollisionError(op, name, firstCol, otherCol string) error {
	err := &NameCollisionError{Op: op, Name: name, FirstCol: firstCol, OtherCol: otherCol}
	return errors.WithStack(err)
}

// DimensionError は入力データの次元が期待値と異なる場合のエラーです。
type DimensionError struct {
	Op       string
	Expected int
	Got      int
	Axis     int // 0 for rows, 1 for columns/features
}

func (e *DimensionError) Error() string {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	return fmt.Sprintf("aies: %s: dimension mismatch on axis %d (%s). Expected %d, got %d", e.Op, e.Axis, axisName, e.Expected, e.Got)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *DimensionError) MarshalZerologObject(event *zerolog.Event) {
	axisName := "features"
	if e.Axis == 0 {
		axisName = "rows"
	}
	event.Str("operation", e.Op).
		Int("expected", e.Expected).
		Int("got", e.Got).
		Int("axis", e.Axis).
		Str("axis_name", axisName).
		Str("type", "DimensionError")
}

// NewDimensionError は新しいDimensionErrorを作成し、スタックトレースを付与します。
func NewDimensionError(op string, expected, got, axis int) error {
	err := &DimensionError{Op: op, Expected: expected, Got: got, Axis: axis}
	return errors.WithStack(err)
}

// ValidationError は入力パラメータの検証に失敗した場合のエラーです。
type ValidationError struct {
	ParamName string
	Reason    string
	Value     interface{}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("aies: validation failed for parameter '%s': %s (got: %v)", e.ParamName, e.Reason, e.Value)
}

// MarshalZerologObject はzerologのイベントに構造化されたエラー情報を追加します。
func (e *ValidationError) MarshalZerologObject(event *zerolog.Event) {
	event.Str("param_name", e.ParamName).
		Str("reason", e.Reason).
		Interface("value", e.Value).
		Str("type", "ValidationError")
}

// NewValidationError は新しいValidationErrorを作成し、スタックトレースを付与します。
func NewValidationError(param, reason string, value interface{}) error {
	err := &ValidationError{ParamName: param, Reason: reason, Value: value}
	return errors.WithStack(err)
}

// ValueError は引数の値が不適切または不正な場合に発生するエラーです。
type ValueError struct {
	Op      string
	Message string
}

func (e *ValueError) Error() string {
	return fmt.Sprintf("aies: %s: %s", e.Op, e.Message)
}

// NewValueError は新しいValueErrorを作成し、スタックトレースを付与します。
func NewValueError(op, message string) error {
	err := &ValueError{Op: op, Message: message}
	return errors.WithStack(err)
}

// ===========================================================================
//
//	cockroachdb/errors ラッパー関数
//
// ===========================================================================

// Is はエラーが特定のターゲットエラーかどうかを判定します。
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As はエラーが特定の型にキャスト可能かどうかを判定します。
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Wrap は既存のエラーをメッセージ付きでラップします。
func Wrap(err error, message string) error {
	return errors.Wrap(err, message)
}

// Wrapf は既存のエラーをフォーマット文字列でラップします。
func Wrapf(err error, format string, args ...interface{}) error {
	return errors.Wrapf(err, format, args...)
}

// New は新しいエラーを作成します。
func New(message string) error {
	return errors.New(message)
}

// Newf は新しいフォーマット済みエラーを作成します。
func Newf(format string, args ...interface{}) error {
	return errors.Newf(format, args...)
}

// WithStack はエラーにスタックトレースを付与します。
func WithStack(err error) error {
	return errors.WithStack(err)
}

// ===========================================================================
//
//	共通エラー変数
//
// ===========================================================================

var (
	// ErrEmptyData は空のデータが渡された場合のエラーです。
	ErrEmptyData = New("empty data")

	// ErrInfeasible は制約を満たす解が存在しない場合のエラーです。
	ErrInfeasible = New("constraints infeasible")
)
