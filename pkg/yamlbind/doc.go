// Package yamlbind はGinハンドラでYAMLボディを送受信するためのバインダとレンダラを提供する。
//
// Content-Typeがapplication/yamlであるリクエストボディを任意の型に
// デシリアライズし、レスポンスの値をYAML形式でシリアライズする。
// JSONの代わりにYAMLでデータを交換するサービスの共通基盤として、
// 全サービスのハンドラから使用する。
package yamlbind
