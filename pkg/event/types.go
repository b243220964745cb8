// Package event はマニフェストの変更を表す通知イベントの型と
// シリアライズ処理を提供する。
//
// マニフェストサービスが変更通知先（NOTIFY_URLで設定）へ送信する
// ペイロードとして使用する。イベント固有のデータはYAML形式で保持する。
package event

import "time"

// Type はイベントの種類を表す。
type Type string

const (
	// TypeManifestCreated はマニフェストが作成されたことを表す。
	TypeManifestCreated Type = "ManifestCreated"
	// TypeManifestUpdated はマニフェストが更新されたことを表す。
	TypeManifestUpdated Type = "ManifestUpdated"
	// TypeManifestDeleted はマニフェストが削除されたことを表す。
	TypeManifestDeleted Type = "ManifestDeleted"
)

// Event はマニフェストの変更を表す不変の通知イベント。
type Event struct {
	// ID はイベントの一意識別子（UUID）。
	ID string `yaml:"id"`
	// ManifestID は対象マニフェストの識別子。
	ManifestID string `yaml:"manifest_id"`
	// EventType はイベントの種類。
	EventType Type `yaml:"event_type"`
	// Data はイベント固有のデータ（YAML形式のテキスト）。
	Data string `yaml:"data"`
	// OccurredAt はイベントが発生した日時。
	OccurredAt time.Time `yaml:"occurred_at"`
}

// ManifestCreatedData はManifestCreatedイベントのデータ。
type ManifestCreatedData struct {
	// UserID は作成したユーザーのID。
	UserID string `yaml:"user_id"`
	// Name はマニフェスト名。
	Name string `yaml:"name"`
	// Description はマニフェストの説明。
	Description string `yaml:"description"`
}

// ManifestUpdatedData はManifestUpdatedイベントのデータ。
type ManifestUpdatedData struct {
	// UserID は更新したユーザーのID。
	UserID string `yaml:"user_id"`
	// Name は更新後のマニフェスト名。
	Name string `yaml:"name"`
}

// ManifestDeletedData はManifestDeletedイベントのデータ。
type ManifestDeletedData struct {
	// UserID は削除を実行したユーザーのID。
	UserID string `yaml:"user_id"`
}
