package yamlbind

import (
	"errors"
	"fmt"
	"net/http"
)

// センチネルエラー。errors.Isによる失敗種別の判定に使用する。
var (
	// ErrContentType はContent-Typeヘッダーがapplication/yamlでないことを表す。
	ErrContentType = errors.New("Content-Type: application/yaml のリクエストが必要です")
	// ErrBodyRead はリクエストボディの読み込み失敗を表す。
	ErrBodyRead = errors.New("リクエストボディの読み込みに失敗しました")
	// ErrDecode はYAMLボディを対象の型にデシリアライズできなかったことを表す。
	ErrDecode = errors.New("YAMLボディのデシリアライズに失敗しました")
	// ErrEncode は値のYAMLシリアライズ失敗を表す。
	ErrEncode = errors.New("YAMLへのシリアライズに失敗しました")
)

// BindError はYAMLバインド/レンダリング失敗の詳細を保持するエラー。
// Errには上記のセンチネルエラー、Causeには下層のコーデック等のエラーが入る。
type BindError struct {
	// Err は失敗種別を表すセンチネルエラー。
	Err error
	// Cause は失敗の原因となった下層のエラー。存在しない場合はnil。
	Cause error
}

// Error はクライアントに提示するエラーメッセージを返す。
// 原因エラーがある場合はメッセージに含める。
func (e *BindError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Err.Error(), e.Cause)
	}
	return e.Err.Error()
}

// Unwrap はセンチネルエラーを返す。errors.Isでの判定を可能にする。
func (e *BindError) Unwrap() error { return e.Err }

// Status はこのエラーに対応するHTTPステータスコードを返す。
func (e *BindError) Status() int { return StatusOf(e) }

// StatusOf はエラーに対応するHTTPステータスコードを返す。
// Content-Type不一致は415、読み込み・デシリアライズ失敗は400、
// それ以外（シリアライズ失敗を含む）は500を返す。
func StatusOf(err error) int {
	switch {
	case errors.Is(err, ErrContentType):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrBodyRead), errors.Is(err, ErrDecode):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// newBindError はセンチネルと原因エラーからBindErrorを生成する。
func newBindError(sentinel, cause error) *BindError {
	return &BindError{Err: sentinel, Cause: cause}
}
