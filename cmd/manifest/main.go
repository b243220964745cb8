// マニフェストサービスのエントリポイント。
// YAMLマニフェストのCRUDと変更通知イベントの送信を行う。
package main

import (
	"log"
	"os"

	"github.com/nao1215/yamlhub/internal/manifest"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	server, err := manifest.NewServer(port)
	if err != nil {
		log.Fatalf("マニフェストサーバーの初期化に失敗: %v", err)
	}

	log.Printf("マニフェストサービスを起動します: :%s", port)
	if err := server.Run(); err != nil {
		log.Fatalf("マニフェストサービスの起動に失敗: %v", err)
	}
}
