package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// JwtCustomClaim carries the viewer's role and visibility scope. The scope
// fields (UserType/Centre/Zone) are the authorization boundary for every
// report query; they are set once at login and never widened by request
// parameters.
type JwtCustomClaim struct {
	ID       int    `json:"id"`
	Role     string `json:"role"`
	UserType string `json:"user_type"`
	Centre   string `json:"centre"`
	Zone     string `json:"zone"`
	jwt.StandardClaims
}

var jwtSecret = []byte(getJwtSecret())

func getJwtSecret() string {
	secret := os.Getenv("API_SECRET")
	if secret == "" {
		return "VETA-IGA-Secret"
	}
	return secret
}

func TokenLifespan() time.Duration {
	hours, err := strconv.Atoi(os.Getenv("TOKEN_HOUR_LIFESPAN"))
	if err != nil || hours <= 0 {
		hours = 24
	}
	return time.Duration(hours) * time.Hour
}

func JwtGenerate(userID int, role string, userType string, centre string, zone string) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, &JwtCustomClaim{
		ID:       userID,
		Role:     role,
		UserType: userType,
		Centre:   centre,
		Zone:     zone,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(TokenLifespan()).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	})

	token, err := t.SignedString(jwtSecret)
	if err != nil {
		return "", err
	}

	return token, nil
}

func JwtValidate(token string) (*jwt.Token, error) {
	return jwt.ParseWithClaims(token, &JwtCustomClaim{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("there's a problem with the signing method")
		}
		return jwtSecret, nil
	})
}
