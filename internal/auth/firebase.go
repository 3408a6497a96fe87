package auth

import (
	"context"
	"fmt"

	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"

	"github.com/shoplist-app/shoplist-backend/config"
)

// InitializeFirebase initializes the Firebase Admin SDK app from a service
// account credentials file. Auth and Firestore clients hang off the app.
func InitializeFirebase(cfg *config.FirebaseConfig) (*firebase.App, error) {
	if cfg.CredentialsPath == "" {
		return nil, fmt.Errorf("FIREBASE_CREDENTIALS_PATH is required")
	}

	opt := option.WithCredentialsFile(cfg.CredentialsPath)
	app, err := firebase.NewApp(context.Background(), &firebase.Config{ProjectID: cfg.ProjectID}, opt)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Firebase app: %w", err)
	}

	return app, nil
}
