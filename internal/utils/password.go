package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword derives a bcrypt hash from the plain password. A zero
// cost falls back to bcrypt.DefaultCost.
func HashPassword(plain string, cost int) (string, error) {
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// PasswordMatches reports whether plain corresponds to the stored
// bcrypt hash. The comparison is constant time.
func PasswordMatches(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
