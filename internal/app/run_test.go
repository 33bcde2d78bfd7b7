package app

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/hitoshi/taskman/internal/config"
)

// TestRun_ServeCommand_FailsWithoutDatabase はserveコマンドがDB接続に失敗した場合にエラーを返すことを検証する。
func TestRun_ServeCommand_FailsWithoutDatabase(t *testing.T) {
	setTestEnv(t)

	var buf bytes.Buffer
	err := Run(&buf, []string{"serve"})
	if err == nil {
		t.Fatal("Run(serve) should fail when database is unreachable")
	}
	if !strings.Contains(err.Error(), "database") {
		t.Errorf("error = %v, want database related error", err)
	}
}

// TestRunServe_CanceledContext はキャンセル済みのコンテキストで即座に終了することを検証する。
func TestRunServe_CanceledContext(t *testing.T) {
	setTestEnv(t)
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("config.Load: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := runServe(ctx, cfg); err == nil {
		t.Fatal("runServe with canceled context should fail before serving")
	}
}

func TestRun_WithMissingEnv_ReturnsError(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("JWT_SECRET", "")

	var buf bytes.Buffer
	err := Run(&buf, []string{"serve"})
	if err == nil {
		t.Fatal("Run with missing env should return error")
	}
}

func TestRun_Healthcheck_NoServer(t *testing.T) {
	// 使用されていないポートに対するヘルスチェックは失敗する
	t.Setenv("SERVER_PORT", "1")

	if err := Run(&bytes.Buffer{}, []string{"healthcheck"}); err == nil {
		t.Fatal("healthcheck should fail when no server is listening")
	}
}

func TestRun_Migrate_FailsWithoutDatabase(t *testing.T) {
	setTestEnv(t)

	if err := Run(&bytes.Buffer{}, []string{"migrate"}); err == nil {
		t.Fatal("migrate should fail when database is unreachable")
	}
}

func setTestEnv(t *testing.T) {
	t.Helper()
	t.Setenv("DATABASE_URL", unreachableDatabaseURL)
	t.Setenv("JWT_SECRET", "test-jwt-secret")
	t.Setenv("BCRYPT_COST", "4")
}
