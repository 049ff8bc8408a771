package utils

import (
	"fmt"

	"github.com/google/uuid"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateMessageID creates an RFC 5322 Message-ID of shape <uuid@domain>.
func GenerateMessageID(domain string) string {
	return fmt.Sprintf("<%s@%s>", uuid.NewString(), domain)
}

func GenerateNanoID(length int) string {
	id, err := gonanoid.Generate(alphabet, length)
	if err != nil {
		panic(err)
	}
	return id
}

func GenerateNanoIDWithPrefix(prefix string, length int) string {
	id, err := gonanoid.Generate(alphabet, length)
	if err != nil {
		panic(err)
	}
	return fmt.Sprintf("%s_%s", prefix, id)
}
