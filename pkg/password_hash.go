package pkg

import "golang.org/x/crypto/bcrypt"

const tokenHashCost = 12

// HashToken is used to produce the api_token_hash config value.
func HashToken(token string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(token), tokenHashCost)
	return string(bytes), err
}

func CheckTokenHash(token, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(token)) == nil
}
