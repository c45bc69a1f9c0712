package application

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
)

// managementCredentialBytes yields a 24 character URL-safe credential once
// base64 encoded, comfortably above the 20 character storage minimum.
const managementCredentialBytes = 18

// NewManagementCredential draws a fresh event management credential from the
// system entropy source.
func NewManagementCredential() (string, error) {
	buf := make([]byte, managementCredentialBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate management credential: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
