package auth

import (
	"crypto/subtle"
	"errors"

	"github.com/ethanbaker/api/pkg/api_key"
	"github.com/ethanbaker/office-assistant/pkg/utils"
	"github.com/gin-gonic/gin"
)

// RequireAPIKey returns middleware accepting only requests whose X-API-KEY
// header matches API_KEY
func RequireAPIKey(cfg *utils.Config) (gin.HandlerFunc, error) {
	apiKey := cfg.Get("API_KEY")
	if apiKey == "" {
		return nil, errors.New("API_KEY not set in environment")
	}

	return api_key.APIKeyHeaderHandler(func(key string) bool {
		return subtle.ConstantTimeCompare([]byte(apiKey), []byte(key)) == 1
	}), nil
}
