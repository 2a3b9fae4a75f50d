package auth

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// SeedUser is one `user:hash` line of the auth seed file.
type SeedUser struct {
	Username string
	Hash     string
}

func LoadFile(path string) ([]SeedUser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open auth file: %w", err)
	}
	defer f.Close()

	var users []SeedUser
	seen := make(map[string]struct{})
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.SplitN(line, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid auth line %d: expected user:hash", lineNum)
		}
		user := strings.TrimSpace(parts[0])
		hash := strings.TrimSpace(parts[1])
		if user == "" || hash == "" {
			return nil, fmt.Errorf("invalid auth line %d: empty user or hash", lineNum)
		}
		if _, exists := seen[user]; exists {
			return nil, fmt.Errorf("duplicate user %q in auth file", user)
		}
		if !strings.HasPrefix(hash, "$argon2id$") {
			return nil, fmt.Errorf("invalid auth line %d: expected argon2id hash", lineNum)
		}
		if _, err := ParseArgon2idHash(hash); err != nil {
			return nil, fmt.Errorf("invalid auth line %d: %w", lineNum, err)
		}
		seen[user] = struct{}{}
		users = append(users, SeedUser{Username: user, Hash: hash})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read auth file: %w", err)
	}

	return users, nil
}
