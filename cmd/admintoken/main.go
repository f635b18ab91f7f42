// admintoken はユーザーへのロール割り当てと管理APIトークンの発行を行う
//
//	admintoken grant -user <id> [-email <addr>] -role super_admin
//	admintoken token -user <id> [-ttl 12h]
//
// 最初の super_admin はこのコマンドで登録する
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/sanosuguru/go-court-booking/internal/application"
	"github.com/sanosuguru/go-court-booking/internal/config"
	"github.com/sanosuguru/go-court-booking/internal/domain/account"
	"github.com/sanosuguru/go-court-booking/internal/infrastructure/postgres"
	"github.com/sanosuguru/go-court-booking/internal/pkg/logger"
	"github.com/sanosuguru/go-court-booking/internal/server"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: admintoken [grant|token] [flags]")
		os.Exit(2)
	}
	_ = godotenv.Load()

	cfg := config.Load()
	logger.Set(logger.NewLogger(cfg.Env))
	defer func() { _ = logger.Sync() }()

	if cfg.Storage.Backend != config.BackendPostgres {
		logger.Fatal("admintoken は STORAGE_BACKEND=postgres でのみ使えます", zap.String("storage", cfg.Storage.Backend))
	}
	db, err := postgres.NewConnection(&cfg.Database)
	if err != nil {
		logger.Fatal("データベースに接続できません", zap.Error(err))
	}
	defer db.Close()
	if err := postgres.RunMigrations(db.DB, cfg.Storage.MigrationsPath); err != nil {
		logger.Fatal("マイグレーションに失敗しました", zap.Error(err))
	}

	svc := application.NewAccountService(postgres.NewTxManager(db), postgres.NewAccountRepository(db), server.TokenIssuer(cfg.Auth.JWTSecret))
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	switch cmd := os.Args[1]; cmd {
	case "grant":
		err = grantCmd(ctx, svc, os.Args[2:])
	case "token":
		err = tokenCmd(ctx, svc, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, "unknown command:", cmd)
		os.Exit(2)
	}
	if err != nil {
		logger.Fatal("admintoken の実行に失敗しました", zap.String("command", os.Args[1]), zap.Error(err))
	}
}

// grantCmd は未登録なら登録し、登録済みならロールを変更する
func grantCmd(ctx context.Context, svc *application.AccountService, args []string) error {
	fs := flag.NewFlagSet("grant", flag.ExitOnError)
	userID := fs.String("user", "", "認証基盤のユーザーID")
	email := fs.String("email", "", "メールアドレス")
	role := fs.String("role", string(account.RoleModerator), "super_admin | moderator | user")
	_ = fs.Parse(args)

	if *userID == "" {
		return account.ErrUserIDRequired
	}
	a, err := svc.RegisterAccount(ctx, application.RegisterAccountInput{UserID: *userID, Email: *email, Role: *role})
	if errors.Is(err, account.ErrAccountExists) {
		a, err = svc.UpdateRole(ctx, *userID, *role)
	}
	if err != nil {
		return err
	}
	fmt.Printf("%s: %s\n", a.UserID, a.Role)
	return nil
}

func tokenCmd(ctx context.Context, svc *application.AccountService, args []string) error {
	fs := flag.NewFlagSet("token", flag.ExitOnError)
	userID := fs.String("user", "", "認証基盤のユーザーID")
	ttl := fs.Duration("ttl", application.DefaultAdminTokenTTL, "トークンの有効期間")
	_ = fs.Parse(args)

	if *userID == "" {
		return account.ErrUserIDRequired
	}
	token, _, err := svc.IssueToken(ctx, *userID, *ttl)
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
