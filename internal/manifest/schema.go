package manifest

import (
	"context"
	"database/sql"
	"embed"

	"github.com/nao1215/yamlhub/pkg/migration"
)

//go:embed migrations
var migrationsFS embed.FS

// initSchema はマイグレーションを実行してマニフェストのスキーマを適用する。
func initSchema(ctx context.Context, db *sql.DB) error {
	return migration.Run(ctx, db, migrationsFS, "migrations")
}
