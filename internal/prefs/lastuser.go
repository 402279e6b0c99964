// Package prefs keeps small UI preferences outside the token store.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const lastUserFile = "last_user.json"

// LastUser is the email of the most recent successful login.
type LastUser struct {
	Email     string    `json:"email"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Dir returns the default preferences directory.
func Dir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "taskpad"), nil
}

func lastUserPath(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return filepath.Join(dir, lastUserFile), nil
}

func SaveLastUser(dir, email string) error {
	path, err := lastUserPath(dir)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(LastUser{Email: email, UpdatedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadLastUser returns "" when nothing was saved.
func LoadLastUser(dir string) (string, error) {
	data, err := os.ReadFile(filepath.Join(dir, lastUserFile))
	if err != nil {
		if os.IsNotExist(err) {
			return "", nil
		}
		return "", err
	}
	var u LastUser
	if err := json.Unmarshal(data, &u); err != nil {
		return "", err
	}
	return u.Email, nil
}

func ClearLastUser(dir string) error {
	err := os.Remove(filepath.Join(dir, lastUserFile))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
