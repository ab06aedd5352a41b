package llm

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/awnumar/memguard"
)

// resolveAPIKey loads a provider API key into an mlocked memguard enclave.
//
// Resolution order follows the deployment conventions: the environment
// variable first, then a container secret file. The plaintext copies are
// wiped as soon as the enclave is sealed; clients open the enclave per
// request and destroy the buffer immediately after use, so the key never
// sits in swappable memory for the lifetime of the process.
func resolveAPIKey(envVar, secretPath string) (*memguard.Enclave, error) {
	if key := strings.TrimSpace(os.Getenv(envVar)); key != "" {
		return memguard.NewEnclave([]byte(key)), nil
	}

	raw, err := os.ReadFile(secretPath)
	if err != nil {
		slog.Error("API key not found in environment or secret file",
			"env_var", envVar, "path", secretPath)
		return nil, fmt.Errorf("%s environment variable not set", envVar)
	}
	slog.Info("Read the API key from container secrets", "path", secretPath)
	key := []byte(strings.TrimSpace(string(raw)))
	for i := range raw {
		raw[i] = 0
	}
	if len(key) == 0 {
		return nil, fmt.Errorf("secret file %s is empty", secretPath)
	}
	return memguard.NewEnclave(key), nil
}

// openKey opens the enclave, copies the key out for the duration of one
// request, and destroys the locked buffer again.
func openKey(enclave *memguard.Enclave) (string, error) {
	buf, err := enclave.Open()
	if err != nil {
		return "", backendErr(ErrKindInvalidCredentials, "failed to open the API key enclave: %w", err)
	}
	key := string(buf.Bytes())
	buf.Destroy()
	return key, nil
}
