package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/github"

	"chirp/models"
	"chirp/store"
)

type githubOAuth struct {
	config *oauth2.Config
}

// ConfigureGitHub enables the GitHub OAuth login flow. Without it the
// /auth/github endpoints answer 503.
func (h *AuthHandler) ConfigureGitHub(clientID, clientSecret, redirectURL string) {
	if clientID == "" || clientSecret == "" {
		log.Println("GitHub OAuth not configured - set GITHUB_CLIENT_ID and GITHUB_CLIENT_SECRET")
		return
	}
	h.github = &githubOAuth{
		config: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes:       []string{"read:user", "user:email"},
			Endpoint:     github.Endpoint,
		},
	}
	log.Println("GitHub OAuth configured successfully")
}

type gitHubUserInfo struct {
	ID        int64  `json:"id"`
	Login     string `json:"login"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	AvatarURL string `json:"avatar_url"`
}

type gitHubEmail struct {
	Email    string `json:"email"`
	Primary  bool   `json:"primary"`
	Verified bool   `json:"verified"`
}

// GitHubAuthURL returns the authorization URL the client should redirect to.
func (h *AuthHandler) GitHubAuthURL(c *gin.Context) {
	if h.github == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "GitHub OAuth not configured"})
		return
	}

	state := primitive.NewObjectID().Hex()
	url := h.github.config.AuthCodeURL(state)
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// GitHubCallback exchanges the authorization code, fetches the GitHub
// profile and signs the user in, creating the account on first login.
func (h *AuthHandler) GitHubCallback(c *gin.Context) {
	code := c.Query("code")
	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Authorization code missing"})
		return
	}

	if h.github == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "GitHub OAuth not configured"})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	token, err := h.github.config.Exchange(ctx, code)
	if err != nil {
		log.Printf("GitHub token exchange failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to exchange authorization code"})
		return
	}

	client := h.github.config.Client(ctx, token)

	ghUser, err := fetchGitHubUser(client)
	if err != nil {
		log.Printf("Failed to get user info from GitHub: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get user information"})
		return
	}

	if ghUser.Email == "" {
		// Profile email can be private; the emails endpoint still lists it.
		email, err := fetchGitHubPrimaryEmail(client)
		if err != nil || email == "" {
			log.Printf("GitHub account has no usable email: %v", err)
			c.JSON(http.StatusBadRequest, gin.H{"error": "Email not provided by GitHub"})
			return
		}
		ghUser.Email = email
	}

	h.handleGitHubUser(c, ctx, ghUser)
}

func fetchGitHubUser(client *http.Client) (*gitHubUserInfo, error) {
	resp, err := client.Get("https://api.github.com/user")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	var user gitHubUserInfo
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func fetchGitHubPrimaryEmail(client *http.Client) (string, error) {
	resp, err := client.Get("https://api.github.com/user/emails")
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var emails []gitHubEmail
	if err := json.Unmarshal(data, &emails); err != nil {
		return "", err
	}

	for _, e := range emails {
		if e.Primary && e.Verified {
			return e.Email, nil
		}
	}
	return "", nil
}

func (h *AuthHandler) handleGitHubUser(c *gin.Context, ctx context.Context, ghUser *gitHubUserInfo) {
	user, err := h.users.GetByEmail(ctx, ghUser.Email)

	isNewUser := false
	switch {
	case errors.Is(err, store.ErrNotFound):
		isNewUser = true
		name := ghUser.Name
		if name == "" {
			name = ghUser.Login
		}
		user = &models.User{
			ID:           primitive.NewObjectID(),
			Name:         name,
			Email:        ghUser.Email,
			Image:        ghUser.AvatarURL,
			GitHubID:     &ghUser.ID,
			AuthProvider: "github",
			CreatedAt:    time.Now().Unix(),
			LastSeen:     time.Now().Unix(),
		}
		if err := h.users.Insert(ctx, user); err != nil {
			log.Printf("Failed to insert GitHub user: %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user account"})
			return
		}
		log.Printf("New GitHub user created: %s (ID: %s)", user.Email, user.ID.Hex())
	case err != nil:
		log.Printf("Database error checking GitHub user: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error"})
		return
	default:
		if err := h.users.RecordLogin(ctx, user.ID, &ghUser.ID, ghUser.AvatarURL); err != nil {
			log.Printf("Failed to update GitHub user login: %v", err)
		}
	}

	tokenString, err := h.signToken(user.ID)
	if err != nil {
		log.Printf("Failed to generate JWT token: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate authentication token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     tokenString,
		"userId":    user.ID.Hex(),
		"email":     user.Email,
		"name":      user.Name,
		"image":     user.Image,
		"isNewUser": isNewUser,
		"message":   "Authentication successful",
	})
}
