package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/mindcheck-backend/internal/app"
	"github.com/yungbote/mindcheck-backend/internal/platform/logger"
	"github.com/yungbote/mindcheck-backend/internal/services"
)

func main() {
	var userIDRaw string
	var role string
	flag.StringVar(&userIDRaw, "user", "", "user id (uuid); a random id is used when empty")
	flag.StringVar(&role, "role", "user", "token role: user or admin")
	flag.Parse()

	userID := uuid.New()
	if s := strings.TrimSpace(userIDRaw); s != "" {
		id, err := uuid.Parse(s)
		if err != nil || id == uuid.Nil {
			fmt.Printf("invalid user id %q\n", s)
			os.Exit(1)
		}
		userID = id
	}

	log := logger.Nop()
	cfg := app.LoadConfig(log)
	auth := services.NewAuthService(log, cfg.JWTSecretKey, cfg.AccessTokenTTL)

	token, err := auth.IssueToken(userID, role)
	if err != nil {
		fmt.Printf("issue token: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintf(os.Stderr, "user_id=%s role=%s ttl=%s\n", userID, role, auth.AccessTTL())
	fmt.Println(token)
}
