package event

import (
	"fmt"
	"time"

	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
)

// New は新しいイベントを生成する。
// dataにはイベント固有のデータ構造体を渡す。YAML形式にシリアライズされる。
func New(manifestID string, eventType Type, data any) (*Event, error) {
	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("イベントデータのシリアライズに失敗: %w", err)
	}

	return &Event{
		ID:         uuid.New().String(),
		ManifestID: manifestID,
		EventType:  eventType,
		Data:       string(yamlData),
		OccurredAt: time.Now().UTC(),
	}, nil
}

// DecodeData はイベントのDataフィールドを指定された型にデシリアライズする。
func DecodeData[T any](e *Event) (*T, error) {
	var data T
	if err := yaml.Unmarshal([]byte(e.Data), &data); err != nil {
		return nil, fmt.Errorf("イベントデータのデシリアライズに失敗: %w", err)
	}
	return &data, nil
}
