package service

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/idtoken"
)

// GoogleIdentity is the subset of a verified Google ID token the portal uses.
type GoogleIdentity struct {
	Subject string
	Email   string
	Name    string
}

// GoogleVerifier checks a Google ID token.
type GoogleVerifier interface {
	Verify(ctx context.Context, idToken string) (*GoogleIdentity, error)
}

type idTokenVerifier struct {
	clientID      string
	allowedDomain string
}

// NewGoogleVerifier validates tokens issued for clientID. A non-empty
// allowedDomain restricts sign-in to that Workspace domain.
func NewGoogleVerifier(clientID, allowedDomain string) GoogleVerifier {
	return &idTokenVerifier{clientID: clientID, allowedDomain: strings.ToLower(allowedDomain)}
}

func (v *idTokenVerifier) Verify(ctx context.Context, token string) (*GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, token, v.clientID)
	if err != nil {
		return nil, err
	}

	email, _ := payload.Claims["email"].(string)
	verified, _ := payload.Claims["email_verified"].(bool)
	if email == "" || !verified {
		return nil, fmt.Errorf("google account email missing or unverified")
	}
	if v.allowedDomain != "" {
		hd, _ := payload.Claims["hd"].(string)
		if strings.ToLower(hd) != v.allowedDomain {
			return nil, fmt.Errorf("domain %q not allowed", hd)
		}
	}

	name, _ := payload.Claims["name"].(string)
	return &GoogleIdentity{
		Subject: payload.Subject,
		Email:   strings.ToLower(email),
		Name:    name,
	}, nil
}
