package auth

import "golang.org/x/crypto/bcrypt"

// HashPassword creates a salted bcrypt hash. Two calls on the same input
// produce different digests because the salt is randomized per call.
func HashPassword(password string, cost int) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether password matches the stored hash. Any byte
// difference, including case or trailing whitespace, fails the match. A
// malformed hash reports false rather than panicking.
func VerifyPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
