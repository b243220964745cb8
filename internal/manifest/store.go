package manifest

import (
	"context"
	"database/sql"
	"time"
)

// Manifest はデータベースに保存されるマニフェストの1行を表す。
type Manifest struct {
	// ID はマニフェストの一意識別子（UUID）。
	ID string
	// UserID はマニフェストを作成したユーザーのID。
	UserID string
	// Name はマニフェスト名。
	Name string
	// Description はマニフェストの説明。
	Description string
	// Content はマニフェスト本体（YAML形式のテキスト）。
	Content string
	// CreatedAt は作成日時。
	CreatedAt time.Time
	// UpdatedAt は更新日時。
	UpdatedAt time.Time
}

// Store はマニフェストのデータベース操作を提供する。
type Store struct {
	// db はSQLiteデータベース接続。
	db *sql.DB
}

// NewStore は新しいStoreを生成する。
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// CreateManifest はマニフェストを新規作成する。
func (s *Store) CreateManifest(ctx context.Context, m *Manifest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO manifests (id, user_id, name, description, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.UserID, m.Name, m.Description, m.Content, m.CreatedAt, m.UpdatedAt,
	)
	return err
}

// GetManifestByID は指定されたIDのマニフェストを取得する。
// 存在しない場合はsql.ErrNoRowsを返す。
func (s *Store) GetManifestByID(ctx context.Context, id string) (Manifest, error) {
	var m Manifest
	err := s.db.QueryRowContext(ctx, `
		SELECT id, user_id, name, description, content, created_at, updated_at
		FROM manifests WHERE id = ?`, id,
	).Scan(&m.ID, &m.UserID, &m.Name, &m.Description, &m.Content, &m.CreatedAt, &m.UpdatedAt)
	return m, err
}

// ListManifestsByUserID は指定されたユーザーのマニフェスト一覧を
// 作成日時の降順で取得する。
func (s *Store) ListManifestsByUserID(ctx context.Context, userID string) ([]Manifest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, name, description, content, created_at, updated_at
		FROM manifests WHERE user_id = ? ORDER BY created_at DESC, id`, userID,
	)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var manifests []Manifest
	for rows.Next() {
		var m Manifest
		if err := rows.Scan(&m.ID, &m.UserID, &m.Name, &m.Description, &m.Content, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		manifests = append(manifests, m)
	}
	return manifests, rows.Err()
}

// UpdateManifest は指定されたIDのマニフェストの名前・説明・本体を更新する。
func (s *Store) UpdateManifest(ctx context.Context, m *Manifest) error {
	_, err := s.db.ExecContext(ctx, `
		UPDATE manifests SET name = ?, description = ?, content = ?, updated_at = ?
		WHERE id = ?`,
		m.Name, m.Description, m.Content, m.UpdatedAt, m.ID,
	)
	return err
}

// DeleteManifest は指定されたIDのマニフェストを削除する。
func (s *Store) DeleteManifest(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM manifests WHERE id = ?", id)
	return err
}
