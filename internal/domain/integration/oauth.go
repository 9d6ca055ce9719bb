package integration

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const callbackAddr = ":6341"

// OAuthHandler handles the PKCE OAuth login flow against the model hub.
type OAuthHandler struct {
	config *oauth2.Config
}

// NewOAuthHandler builds a handler for the hub's OAuth endpoints.
func NewOAuthHandler(clientID, hubURL string, scopes []string) *OAuthHandler {
	return &OAuthHandler{
		config: &oauth2.Config{
			ClientID: clientID,
			Endpoint: oauth2.Endpoint{
				AuthURL:  hubURL + "/oauth/authorize",
				TokenURL: hubURL + "/oauth/token",
			},
			RedirectURL: "http://localhost:6341/callback",
			Scopes:      scopes,
		},
	}
}

// GeneratePKCE creates a code verifier and challenge.
func GeneratePKCE() (verifier, challenge string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", err
	}
	verifier = base64.RawURLEncoding.EncodeToString(b)
	h := sha256.New()
	h.Write([]byte(verifier))
	challenge = base64.RawURLEncoding.EncodeToString(h.Sum(nil))
	return verifier, challenge, nil
}

// Login initiates the OAuth flow and captures the token via a
// temporary localhost callback server. It blocks until the browser
// round-trip completes, ctx is cancelled, or five minutes pass.
func (h *OAuthHandler) Login(ctx context.Context) (*oauth2.Token, error) {
	verifier, challenge, err := GeneratePKCE()
	if err != nil {
		return nil, err
	}

	stateBytes := make([]byte, 16)
	if _, err := rand.Read(stateBytes); err != nil {
		return nil, err
	}
	state := base64.RawURLEncoding.EncodeToString(stateBytes)

	authURL := h.config.AuthCodeURL(state,
		oauth2.SetAuthURLParam("code_challenge", challenge),
		oauth2.SetAuthURLParam("code_challenge_method", "S256"),
	)

	fmt.Printf("Please log in at: %s\n", authURL)

	codeChan := make(chan string)
	errChan := make(chan error)

	mux := http.NewServeMux()
	mux.HandleFunc("/callback", func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query()
		if query.Get("state") != state {
			errChan <- fmt.Errorf("invalid state")
			return
		}
		code := query.Get("code")
		if code == "" {
			errChan <- fmt.Errorf("no code received")
			return
		}
		fmt.Fprintln(w, "Login successful! You can close this window.")
		codeChan <- code
	})

	srv := &http.Server{Addr: callbackAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			errChan <- err
		}
	}()
	defer srv.Shutdown(ctx)

	select {
	case code := <-codeChan:
		return h.config.Exchange(ctx, code, oauth2.SetAuthURLParam("code_verifier", verifier))
	case err := <-errChan:
		return nil, err
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(5 * time.Minute):
		return nil, fmt.Errorf("timeout waiting for login")
	}
}
