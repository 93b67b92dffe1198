// Gateway credential models
package auth

import "time"

type TokenRequest struct {
	Gateway string `json:"gateway"`
	Key     string `json:"key"`
}

type TokenResponse struct {
	Gateway   string    `json:"gateway"`
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}
