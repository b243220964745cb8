package manifest

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-yaml"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/nao1215/yamlhub/pkg/event"
	"github.com/nao1215/yamlhub/pkg/httpclient"
	"github.com/nao1215/yamlhub/pkg/middleware"
	"github.com/nao1215/yamlhub/pkg/yamlbind"
)

// Server はマニフェストサービスのHTTPサーバー。
type Server struct {
	// router はGinのHTTPルーター。
	router *gin.Engine
	// port はサーバーのリッスンポート。
	port string
	// store はマニフェストのデータベース操作オブジェクト。
	store *Store
	// db はSQLiteデータベース接続。
	db *sql.DB
	// notifyClient は変更通知先へのHTTPクライアント。未設定の場合はnil。
	notifyClient *httpclient.Client
}

// NewServer は新しいマニフェストサーバーを生成する。
// SQLiteデータベースの初期化とスキーマ作成を行う。
func NewServer(port string) (*Server, error) {
	sqlDB, err := sql.Open("sqlite", "/data/manifest.db?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("データベース接続に失敗: %w", err)
	}

	if err := initSchema(context.Background(), sqlDB); err != nil {
		return nil, fmt.Errorf("スキーマ初期化に失敗: %w", err)
	}

	router := gin.New()
	router.Use(middleware.Recovery())
	router.Use(gin.Logger())

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		router.Use(middleware.CORS(strings.Split(origins, ",")))
	}

	s := &Server{
		router: router,
		port:   port,
		store:  NewStore(sqlDB),
		db:     sqlDB,
	}

	// NOTIFY_URLが未設定の場合、変更通知は送信しない
	if notifyURL := os.Getenv("NOTIFY_URL"); notifyURL != "" {
		s.notifyClient = httpclient.New(notifyURL)
	}

	s.setupRoutes()

	return s, nil
}

// Run はHTTPサーバーを起動する。
func (s *Server) Run() error {
	return s.router.Run(fmt.Sprintf(":%s", s.port))
}

// setupRoutes はAPIルーティングを設定する。
func (s *Server) setupRoutes() {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "dev-secret-key"
	}

	api := s.router.Group("/api/v1")
	api.Use(middleware.JWTAuth(jwtSecret))
	{
		manifests := api.Group("/manifests")
		{
			// マニフェスト作成
			manifests.POST("", s.handleCreate())
			// マニフェスト一覧取得
			manifests.GET("", s.handleList())
			// マニフェスト詳細取得
			manifests.GET("/:id", s.handleGetByID())
			// マニフェスト更新
			manifests.PUT("/:id", s.handleUpdate())
			// マニフェスト削除
			manifests.DELETE("/:id", s.handleDelete())
		}
	}

	// ヘルスチェック
	s.router.GET("/health", func(c *gin.Context) {
		yamlbind.Respond(c, http.StatusOK, gin.H{"status": "ok", "service": "manifest"})
	})
}

// createManifestRequest はマニフェスト作成リクエストのYAML構造。
type createManifestRequest struct {
	// Name はマニフェスト名。
	Name string `yaml:"name"`
	// Description はマニフェストの説明。
	Description string `yaml:"description"`
	// Spec はマニフェスト本体。
	Spec map[string]any `yaml:"spec"`
}

// updateManifestRequest はマニフェスト更新リクエストのYAML構造。
type updateManifestRequest struct {
	// Name はマニフェスト名。
	Name string `yaml:"name"`
	// Description はマニフェストの説明。
	Description string `yaml:"description"`
	// Spec はマニフェスト本体。
	Spec map[string]any `yaml:"spec"`
}

// manifestResponse はマニフェストのYAMLレスポンス構造。
type manifestResponse struct {
	// ID はマニフェストの一意識別子。
	ID string `yaml:"id"`
	// UserID はマニフェストを作成したユーザーのID。
	UserID string `yaml:"user_id"`
	// Name はマニフェスト名。
	Name string `yaml:"name"`
	// Description はマニフェストの説明。
	Description string `yaml:"description"`
	// Spec はマニフェスト本体。
	Spec map[string]any `yaml:"spec"`
	// CreatedAt は作成日時。
	CreatedAt string `yaml:"created_at"`
	// UpdatedAt は更新日時。
	UpdatedAt string `yaml:"updated_at"`
}

// toManifestResponse はDB行をYAMLレスポンスに変換する。
// 保存されているマニフェスト本体（YAMLテキスト）を構造化して返す。
func toManifestResponse(m Manifest) (manifestResponse, error) {
	var spec map[string]any
	if err := yaml.Unmarshal([]byte(m.Content), &spec); err != nil {
		return manifestResponse{}, fmt.Errorf("マニフェスト本体のデシリアライズに失敗: %w", err)
	}

	return manifestResponse{
		ID:          m.ID,
		UserID:      m.UserID,
		Name:        m.Name,
		Description: m.Description,
		Spec:        spec,
		CreatedAt:   m.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
		UpdatedAt:   m.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}, nil
}

// handleCreate はマニフェスト作成を処理するハンドラを返す。
// 新しいマニフェストを保存し、ManifestCreatedイベントを通知先に送信する。
func (s *Server) handleCreate() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			yamlbind.AbortWithStatus(c, http.StatusUnauthorized, "ユーザーIDが取得できません")
			return
		}

		var req createManifestRequest
		if !yamlbind.BindOrAbort(c, &req) {
			return
		}
		if req.Name == "" {
			yamlbind.AbortWithStatus(c, http.StatusBadRequest, "リクエストが不正です: name は必須です")
			return
		}

		// マニフェスト本体は正規化されたYAMLテキストとして保存する
		content, err := yaml.Marshal(req.Spec)
		if err != nil {
			yamlbind.AbortWithStatus(c, http.StatusInternalServerError, "マニフェスト本体のシリアライズに失敗しました")
			log.Printf("マニフェスト本体シリアライズエラー: %v", err)
			return
		}

		now := time.Now().UTC()
		manifestID := uuid.New().String()
		if err := s.store.CreateManifest(c.Request.Context(), &Manifest{
			ID:          manifestID,
			UserID:      userID,
			Name:        req.Name,
			Description: req.Description,
			Content:     string(content),
			CreatedAt:   now,
			UpdatedAt:   now,
		}); err != nil {
			yamlbind.AbortWithStatus(c, http.StatusInternalServerError, "マニフェストの作成に失敗しました")
			log.Printf("マニフェスト作成エラー: %v", err)
			return
		}

		// ManifestCreatedイベントを通知先に送信する
		s.emitEvent(c, manifestID, event.TypeManifestCreated, event.ManifestCreatedData{
			UserID:      userID,
			Name:        req.Name,
			Description: req.Description,
		})

		// 作成したマニフェストをDBから取得してレスポンスを返す
		created, err := s.store.GetManifestByID(c.Request.Context(), manifestID)
		if err != nil {
			yamlbind.AbortWithStatus(c, http.StatusInternalServerError, "作成したマニフェストの取得に失敗しました")
			log.Printf("マニフェスト取得エラー: %v", err)
			return
		}

		resp, err := toManifestResponse(created)
		if err != nil {
			yamlbind.AbortWithStatus(c, http.StatusInternalServerError, "マニフェストの変換に失敗しました")
			log.Printf("マニフェスト変換エラー: %v", err)
			return
		}

		yamlbind.Respond(c, http.StatusCreated, resp)
	}
}

// handleList はユーザーのマニフェスト一覧取得を処理するハンドラを返す。
func (s *Server) handleList() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			yamlbind.AbortWithStatus(c, http.StatusUnauthorized, "ユーザーIDが取得できません")
			return
		}

		manifests, err := s.store.ListManifestsByUserID(c.Request.Context(), userID)
		if err != nil {
			yamlbind.AbortWithStatus(c, http.StatusInternalServerError, "マニフェスト一覧の取得に失敗しました")
			log.Printf("マニフェスト一覧取得エラー: %v", err)
			return
		}

		responses := make([]manifestResponse, 0, len(manifests))
		for _, m := range manifests {
			resp, err := toManifestResponse(m)
			if err != nil {
				yamlbind.AbortWithStatus(c, http.StatusInternalServerError, "マニフェストの変換に失敗しました")
				log.Printf("マニフェスト変換エラー: %v", err)
				return
			}
			responses = append(responses, resp)
		}

		yamlbind.Respond(c, http.StatusOK, responses)
	}
}

// handleGetByID はマニフェスト詳細取得を処理するハンドラを返す。
// 指定されたIDのマニフェストが現在のユーザーに所属しているかを確認する。
func (s *Server) handleGetByID() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			yamlbind.AbortWithStatus(c, http.StatusUnauthorized, "ユーザーIDが取得できません")
			return
		}

		m, ok := s.getOwnedManifest(c, userID)
		if !ok {
			return
		}

		resp, err := toManifestResponse(m)
		if err != nil {
			yamlbind.AbortWithStatus(c, http.StatusInternalServerError, "マニフェストの変換に失敗しました")
			log.Printf("マニフェスト変換エラー: %v", err)
			return
		}

		yamlbind.Respond(c, http.StatusOK, resp)
	}
}

// handleUpdate はマニフェスト更新を処理するハンドラを返す。
// 指定されたIDのマニフェストの名前・説明・本体を更新し、
// ManifestUpdatedイベントを通知先に送信する。
func (s *Server) handleUpdate() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			yamlbind.AbortWithStatus(c, http.StatusUnauthorized, "ユーザーIDが取得できません")
			return
		}

		m, ok := s.getOwnedManifest(c, userID)
		if !ok {
			return
		}

		var req updateManifestRequest
		if !yamlbind.BindOrAbort(c, &req) {
			return
		}
		if req.Name == "" {
			yamlbind.AbortWithStatus(c, http.StatusBadRequest, "リクエストが不正です: name は必須です")
			return
		}

		content, err := yaml.Marshal(req.Spec)
		if err != nil {
			yamlbind.AbortWithStatus(c, http.StatusInternalServerError, "マニフェスト本体のシリアライズに失敗しました")
			log.Printf("マニフェスト本体シリアライズエラー: %v", err)
			return
		}

		m.Name = req.Name
		m.Description = req.Description
		m.Content = string(content)
		m.UpdatedAt = time.Now().UTC()
		if err := s.store.UpdateManifest(c.Request.Context(), &m); err != nil {
			yamlbind.AbortWithStatus(c, http.StatusInternalServerError, "マニフェストの更新に失敗しました")
			log.Printf("マニフェスト更新エラー: %v", err)
			return
		}

		// ManifestUpdatedイベントを通知先に送信する
		s.emitEvent(c, m.ID, event.TypeManifestUpdated, event.ManifestUpdatedData{
			UserID: userID,
			Name:   req.Name,
		})

		// 更新後のマニフェストをDBから取得してレスポンスを返す
		updated, err := s.store.GetManifestByID(c.Request.Context(), m.ID)
		if err != nil {
			yamlbind.AbortWithStatus(c, http.StatusInternalServerError, "更新後のマニフェストの取得に失敗しました")
			log.Printf("マニフェスト取得エラー: %v", err)
			return
		}

		resp, err := toManifestResponse(updated)
		if err != nil {
			yamlbind.AbortWithStatus(c, http.StatusInternalServerError, "マニフェストの変換に失敗しました")
			log.Printf("マニフェスト変換エラー: %v", err)
			return
		}

		yamlbind.Respond(c, http.StatusOK, resp)
	}
}

// handleDelete はマニフェスト削除を処理するハンドラを返す。
// 指定されたIDのマニフェストを削除し、ManifestDeletedイベントを通知先に送信する。
func (s *Server) handleDelete() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := middleware.GetUserID(c)
		if userID == "" {
			yamlbind.AbortWithStatus(c, http.StatusUnauthorized, "ユーザーIDが取得できません")
			return
		}

		m, ok := s.getOwnedManifest(c, userID)
		if !ok {
			return
		}

		if err := s.store.DeleteManifest(c.Request.Context(), m.ID); err != nil {
			yamlbind.AbortWithStatus(c, http.StatusInternalServerError, "マニフェストの削除に失敗しました")
			log.Printf("マニフェスト削除エラー: %v", err)
			return
		}

		// ManifestDeletedイベントを通知先に送信する
		s.emitEvent(c, m.ID, event.TypeManifestDeleted, event.ManifestDeletedData{
			UserID: userID,
		})

		yamlbind.Respond(c, http.StatusOK, gin.H{"message": "マニフェストを削除しました"})
	}
}

// getOwnedManifest はパスパラメータのIDからマニフェストを取得し、
// 所有者チェックを行う。失敗した場合はエラーレスポンスを書き込みfalseを返す。
func (s *Server) getOwnedManifest(c *gin.Context, userID string) (Manifest, bool) {
	manifestID := c.Param("id")
	m, err := s.store.GetManifestByID(c.Request.Context(), manifestID)
	if err == sql.ErrNoRows {
		yamlbind.AbortWithStatus(c, http.StatusNotFound, "マニフェストが見つかりません")
		return Manifest{}, false
	}
	if err != nil {
		yamlbind.AbortWithStatus(c, http.StatusInternalServerError, "マニフェストの取得に失敗しました")
		log.Printf("マニフェスト取得エラー: %v", err)
		return Manifest{}, false
	}

	if m.UserID != userID {
		yamlbind.AbortWithStatus(c, http.StatusForbidden, "このマニフェストへのアクセス権がありません")
		return Manifest{}, false
	}

	return m, true
}

// emitEvent は変更通知イベントを通知先に送信する。
// 通知先が未設定の場合は何もしない。送信に失敗した場合はログに記録するが、
// 呼び出し元にはエラーを返さない。
func (s *Server) emitEvent(c *gin.Context, manifestID string, eventType event.Type, data any) {
	if s.notifyClient == nil {
		return
	}

	ev, err := event.New(manifestID, eventType, data)
	if err != nil {
		log.Printf("イベントの生成に失敗: %v", err)
		return
	}

	ctx := httpclient.WithUserID(c.Request.Context(), middleware.GetUserID(c))
	if err := s.notifyClient.PostYAML(ctx, "/api/v1/events", ev, nil); err != nil {
		log.Printf("通知先へのイベント送信に失敗: %v", err)
	}
}
