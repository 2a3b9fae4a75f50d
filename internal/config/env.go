package config

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// envFileName is relative to the working directory; tests point it elsewhere.
var envFileName = ".env"

// initEnvFile writes a .env with a fresh session secret on first run and
// exports its values for keys not already set.
func initEnvFile() {
	if os.Getenv("MEMO_SKIP_ENV_FILE") != "" {
		return
	}
	if err := ensureEnvFile(); err != nil {
		return
	}
	_ = loadEnvFile()
}

func ensureEnvFile() error {
	if _, err := os.Stat(envFileName); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}
	secret, err := randomSecret()
	if err != nil {
		return err
	}
	content := []string{
		"# generated on first start",
		"MEMO_DATA_PATH=.data",
		"MEMO_AUTH_SECRET=" + secret,
		"",
	}
	return os.WriteFile(envFileName, []byte(strings.Join(content, "\n")), 0o600)
}

func randomSecret() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generate secret: %w", err)
	}
	return base64.RawStdEncoding.EncodeToString(buf), nil
}

// loadEnvFile exports the file's values; variables already set win.
func loadEnvFile() error {
	return godotenv.Load(envFileName)
}
