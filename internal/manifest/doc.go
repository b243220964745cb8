// Package manifest はYAMLマニフェストの保存と配信を行うサービスを提供する。
//
// マニフェストは名前と説明を持つYAMLドキュメントであり、ユーザーごとに
// 管理される。リクエストとレスポンスのボディはすべてapplication/yaml形式で、
// pkg/yamlbindを介して送受信する。作成・更新・削除時には変更通知イベントを
// NOTIFY_URLで指定されたサービスへ送信する。
package manifest
