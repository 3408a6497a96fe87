// Command createadmin provisions the admin account: the identity-provider
// user plus the matching user document with the admin role. Safe to run
// repeatedly.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"

	"github.com/shoplist-app/shoplist-backend/config"
	"github.com/shoplist-app/shoplist-backend/internal/auth"
	fsadapter "github.com/shoplist-app/shoplist-backend/internal/store/firestore"
	userdomain "github.com/shoplist-app/shoplist-backend/internal/users/domain"
	userrepo "github.com/shoplist-app/shoplist-backend/internal/users/repository"
	"github.com/shoplist-app/shoplist-backend/pkg/logging"
)

func main() {
	logging.Setup()

	password := flag.String("password", "", "admin password (required on first run)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	email := strings.ToLower(cfg.Admin.Email)

	ctx := context.Background()
	app, err := auth.InitializeFirebase(&cfg.Firebase)
	if err != nil {
		slog.Error("initializing firebase", "error", err)
		os.Exit(1)
	}
	authClient, err := app.Auth(ctx)
	if err != nil {
		slog.Error("creating auth client", "error", err)
		os.Exit(1)
	}
	fsClient, err := app.Firestore(ctx)
	if err != nil {
		slog.Error("creating firestore client", "error", err)
		os.Exit(1)
	}
	defer fsClient.Close()

	record, err := authClient.GetUserByEmail(ctx, email)
	switch {
	case err == nil:
		slog.Info("admin auth account already exists", "uid", record.UID)
	case fbauth.IsUserNotFound(err):
		if *password == "" {
			slog.Error("admin account does not exist and -password was not given")
			os.Exit(1)
		}
		params := (&fbauth.UserToCreate{}).
			Email(email).
			Password(*password).
			DisplayName("Admin")
		record, err = authClient.CreateUser(ctx, params)
		if err != nil {
			slog.Error("creating admin auth account", "error", err)
			os.Exit(1)
		}
		slog.Info("admin auth account created", "uid", record.UID)
	default:
		slog.Error("looking up admin account", "error", err)
		os.Exit(1)
	}

	users := userrepo.NewUserRepository(fsadapter.New(fsClient))
	err = users.Upsert(ctx, userdomain.User{
		UID:         record.UID,
		Email:       email,
		DisplayName: "Admin",
		Role:        "admin",
	})
	if err != nil {
		slog.Error("writing admin user document", "error", err)
		os.Exit(1)
	}

	slog.Info("admin account ready", "email", email)
}
