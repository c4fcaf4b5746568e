package identity

import (
	"context"
	"encoding/base64"
	"fmt"

	firebase "firebase.google.com/go/v4"
	fbauth "firebase.google.com/go/v4/auth"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// tokenVerifier is the slice of *auth.Client the verifier depends on.
type tokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

// FirebaseVerifier verifies Firebase ID tokens.
type FirebaseVerifier struct {
	client tokenVerifier
	log    *zap.Logger
}

// NewFirebaseVerifier builds a verifier from a service-account key.
// credentialsB64 is the base64-encoded JSON key, the same form the key is
// kept in deployment secrets.
func NewFirebaseVerifier(ctx context.Context, credentialsB64, projectID string, logger *zap.Logger) (*FirebaseVerifier, error) {
	creds, err := base64.StdEncoding.DecodeString(credentialsB64)
	if err != nil {
		return nil, fmt.Errorf("decode firebase credentials: %w", err)
	}

	var cfg *firebase.Config
	if projectID != "" {
		cfg = &firebase.Config{ProjectID: projectID}
	}
	app, err := firebase.NewApp(ctx, cfg, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("init firebase app: %w", err)
	}
	client, err := app.Auth(ctx)
	if err != nil {
		return nil, fmt.Errorf("init firebase auth: %w", err)
	}
	return newFirebaseVerifier(client, logger), nil
}

func newFirebaseVerifier(client tokenVerifier, logger *zap.Logger) *FirebaseVerifier {
	return &FirebaseVerifier{client: client, log: logger}
}

// Verify checks the ID token with Firebase and returns the subject.
// Tokens without an email claim are rejected; email is the identity key
// every authorization decision correlates on.
func (v *FirebaseVerifier) Verify(ctx context.Context, token string) (Subject, error) {
	if token == "" {
		return Subject{}, ErrMissingCredential
	}
	tok, err := v.client.VerifyIDToken(ctx, token)
	if err != nil {
		v.log.Debug("id token rejected", zap.Error(err))
		return Subject{}, fmt.Errorf("%w: %v", ErrInvalidCredential, err)
	}
	email, _ := tok.Claims["email"].(string)
	if email == "" {
		return Subject{}, fmt.Errorf("%w: token has no email claim", ErrInvalidCredential)
	}
	return Subject{UID: tok.UID, Email: email}, nil
}
