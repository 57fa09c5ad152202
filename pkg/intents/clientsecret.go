package intents

import (
	"fmt"
	"strings"
)

const clientSecretSeparator = "_secret_"

// IDFromClientSecret extracts the intent id from a client secret of the
// form "<intent id>_secret_<secret>".
func IDFromClientSecret(clientSecret string) (string, error) {
	id, _, found := strings.Cut(clientSecret, clientSecretSeparator)
	if !found || id == "" {
		return "", fmt.Errorf("invalid client secret: %q", clientSecret)
	}
	return id, nil
}
