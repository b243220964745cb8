// Package middleware はGinベースのHTTP APIで使用する共通ミドルウェアを提供する。
//
// JWT認証トークンの検証と発行、パニックリカバリ、CORS設定を含む。
// エラーレスポンスはすべてYAML形式で返す。
package middleware
