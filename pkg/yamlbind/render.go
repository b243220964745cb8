package yamlbind

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/goccy/go-yaml"
)

// Render はGinのrender.Renderを実装するYAMLレンダラー。
// c.Render(http.StatusOK, yamlbind.Render{Data: v}) の形式で使用できる。
type Render struct {
	// Data はシリアライズ対象の値。
	Data any
}

var _ render.Render = Render{}

// Render は値をYAMLにシリアライズしてレスポンスボディへ書き込む。
// シリアライズに失敗した場合は*BindErrorを返す。
func (r Render) Render(w http.ResponseWriter) error {
	r.WriteContentType(w)
	data, err := yaml.Marshal(r.Data)
	if err != nil {
		return newBindError(ErrEncode, err)
	}
	_, err = w.Write(data)
	return err
}

// WriteContentType はContent-Typeヘッダーにapplication/yamlを設定する。
// 既に設定されている場合は上書きしない。
func (r Render) WriteContentType(w http.ResponseWriter) {
	header := w.Header()
	if vals := header["Content-Type"]; len(vals) == 0 {
		header["Content-Type"] = []string{ContentType}
	}
}

// Respond は値をYAMLにシリアライズし、Content-Type: application/yamlを
// 設定してレスポンスとして書き込む。シリアライズに失敗した場合は
// ステータス500とエラーメッセージ（text/plain）を返す。
func Respond(c *gin.Context, status int, obj any) {
	data, err := yaml.Marshal(obj)
	if err != nil {
		c.String(http.StatusInternalServerError, "%s", newBindError(ErrEncode, err).Error())
		return
	}
	c.Data(status, ContentType, data)
}

// errorBody はYAMLエラーレスポンスのボディ構造。
type errorBody struct {
	// Error はクライアントに提示するエラーメッセージ。
	Error string `yaml:"error"`
}

// AbortWithError はエラーに対応するステータスコードとYAMLエラーボディで
// リクエストを中断する。Bind系の失敗をそのままクライアントに返す際に使用する。
func AbortWithError(c *gin.Context, err error) {
	AbortWithStatus(c, StatusOf(err), err.Error())
}

// AbortWithStatus は指定ステータスコードとYAMLエラーボディで
// リクエストを中断する。gin.Context.AbortWithStatusJSONのYAML版。
func AbortWithStatus(c *gin.Context, status int, message string) {
	Respond(c, status, errorBody{Error: message})
	c.Abort()
}
