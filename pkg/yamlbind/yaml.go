package yamlbind

import (
	"io"
	"mime"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-yaml"
)

// ContentType はYAMLボディのMIMEタイプ（RFC 9512）。
const ContentType = "application/yaml"

// YAML は呼び出し側の型Tの値を1つ保持するコンテナ。
// リクエストボディからデコードした値の受け渡しと、
// その値のYAMLレスポンスとしての書き込みに使用する。
type YAML[T any] struct {
	// Value はYAMLボディからデコードされた値。
	Value T
}

// Bind はリクエストボディをYAMLとしてobjにデシリアライズする。
// Content-Typeがapplication/yamlでない場合（ヘッダー欠落を含む）、
// ボディの読み込みに失敗した場合、デシリアライズに失敗した場合は
// *BindErrorを返す。対応するステータスコードはStatusOfで取得できる。
func Bind(c *gin.Context, obj any) error {
	if !isYAMLContentType(c.Request) {
		return newBindError(ErrContentType, nil)
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return newBindError(ErrBodyRead, err)
	}

	if err := yaml.Unmarshal(body, obj); err != nil {
		return newBindError(ErrDecode, err)
	}
	return nil
}

// BindOrAbort はBindを実行し、失敗した場合は対応するステータスコードと
// YAMLエラーボディでリクエストを中断する。成功した場合のみtrueを返す。
func BindOrAbort(c *gin.Context, obj any) bool {
	if err := Bind(c, obj); err != nil {
		AbortWithError(c, err)
		return false
	}
	return true
}

// Extract はリクエストボディを型Tの値としてデシリアライズし、
// コンテナに包んで返す。エラーの扱いはBindと同じ。
func Extract[T any](c *gin.Context) (*YAML[T], error) {
	var value T
	if err := Bind(c, &value); err != nil {
		return nil, err
	}
	return &YAML[T]{Value: value}, nil
}

// Respond は保持している値をYAMLレスポンスとして書き込む。
func (y *YAML[T]) Respond(c *gin.Context, status int) {
	Respond(c, status, y.Value)
}

// isYAMLContentType はリクエストのContent-Typeがapplication/yamlかを判定する。
// charset等のメディアタイプパラメータは無視する。
// ヘッダーが欠落している場合やパースできない場合はfalseを返す。
func isYAMLContentType(r *http.Request) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == ContentType
}
