package app

// Command はアプリケーションの起動モードを表す。
type Command string

const (
	// CommandServe はAPIサーバーモードで起動することを示す。
	CommandServe Command = "serve"
	// CommandMigrate はデータベースマイグレーションを実行することを示す。
	CommandMigrate Command = "migrate"
	// CommandHealthcheck はヘルスチェックを実行することを示す。
	// distroless環境でのDockerヘルスチェック用。
	CommandHealthcheck Command = "healthcheck"
)

// MigrateDirection はマイグレーションの方向を表す。
type MigrateDirection string

const (
	// MigrateUp は未適用のマイグレーションをすべて適用する。
	MigrateUp MigrateDirection = "up"
	// MigrateDown は直近のマイグレーションを1件ロールバックする。
	MigrateDown MigrateDirection = "down"
)

// ParseCommand はコマンドライン引数からサブコマンドを解析する。
// 引数が空またはサポート外のコマンドの場合はCommandServeを返す。
func ParseCommand(args []string) Command {
	if len(args) == 0 {
		return CommandServe
	}

	switch args[0] {
	case "serve":
		return CommandServe
	case "migrate":
		return CommandMigrate
	case "healthcheck":
		return CommandHealthcheck
	default:
		return CommandServe
	}
}

// ParseMigrateDirection は migrate サブコマンドの方向を解析する。
// "migrate down" の場合のみMigrateDownを返し、それ以外はMigrateUpとする。
func ParseMigrateDirection(args []string) MigrateDirection {
	if len(args) >= 2 && args[1] == "down" {
		return MigrateDown
	}
	return MigrateUp
}
