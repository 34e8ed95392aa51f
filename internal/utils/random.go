package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

const letters = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomIndex(n int) int {
	i, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		// crypto/rand only fails when the OS entropy source is broken
		panic(err)
	}
	return int(i.Int64())
}

// GenerateRandomOTP returns a 6-digit one-time code.
func GenerateRandomOTP() string {
	return fmt.Sprintf("%06d", randomIndex(1000000))
}

// GenerateRandomPassword skips look-alike characters (0/O, 1/l/I) since the password is read off an e-mail.
func GenerateRandomPassword(length int) string {
	password := make([]byte, length)
	for i := range password {
		password[i] = letters[randomIndex(len(letters))]
	}
	return string(password)
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
