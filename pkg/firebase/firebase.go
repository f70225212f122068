package firebase

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go/v4"
	"google.golang.org/api/option"
)

// App holds the initialized Firebase app and its Firestore client
type App struct {
	FirebaseApp *firebase.App
	Firestore   *firestore.Client
}

// InitFirebase initializes the Firebase application and a Firestore client.
// projectID may be empty when the credentials file names the project.
func InitFirebase(ctx context.Context, credentialsPath, projectID string, logger *slog.Logger) (*App, error) {
	if credentialsPath == "" {
		return nil, fmt.Errorf("firebase credentials path not provided")
	}

	// Check if the credentials file exists
	if _, err := os.Stat(credentialsPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("firebase credentials file not found at %s", credentialsPath)
	}

	opt := option.WithCredentialsFile(credentialsPath)

	var conf *firebase.Config
	if projectID != "" {
		conf = &firebase.Config{ProjectID: projectID}
	}
	firebaseApp, err := firebase.NewApp(ctx, conf, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing firebase app: %w", err)
	}

	client, err := firebaseApp.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error getting firestore client: %w", err)
	}

	logger.Info("firebase app and firestore client initialized")
	return &App{FirebaseApp: firebaseApp, Firestore: client}, nil
}

// Close releases the Firestore client.
func (a *App) Close() error {
	if a == nil || a.Firestore == nil {
		return nil
	}
	return a.Firestore.Close()
}
