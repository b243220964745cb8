// Package httpclient はサービス間のHTTP通信を行うクライアントを提供する。
//
// リクエスト/レスポンスのボディはYAML形式で交換する。
// マニフェスト変更通知の送信など、サービス間の通信パターンを統一する。
package httpclient
