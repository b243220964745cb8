package middleware

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nao1215/yamlhub/pkg/yamlbind"
)

// Recovery はパニックからの回復を行うGinミドルウェアを返す。
// パニック発生時にパニック値をログに出力し、500とYAMLエラーボディを返す。
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				log.Printf("[PANIC] %s %s: %v", c.Request.Method, c.Request.URL.Path, r)
				yamlbind.AbortWithStatus(c, http.StatusInternalServerError, "内部サーバーエラーが発生しました")
			}
		}()
		c.Next()
	}
}
