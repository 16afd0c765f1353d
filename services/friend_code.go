package services

import (
	"context"
	"math/rand/v2"

	"habit-battle-system/repository"
)

const (
	FriendCodeLength   = 5
	friendCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// CodeSource draws one candidate friend code.
type CodeSource func() string

func randomFriendCode() string {
	b := make([]byte, FriendCodeLength)
	for i := range b {
		b[i] = friendCodeAlphabet[rand.IntN(len(friendCodeAlphabet))]
	}
	return string(b)
}

// IsValidFriendCode checks length and alphabet.
func IsValidFriendCode(code string) bool {
	if len(code) != FriendCodeLength {
		return false
	}
	for i := 0; i < len(code); i++ {
		c := code[i]
		if !(c >= 'A' && c <= 'Z') && !(c >= '0' && c <= '9') {
			return false
		}
	}
	return true
}

// generateUniqueFriendCode draws until a code is not taken. There is no attempt cap:
// with 36^5 codes a collision streak is not a practical concern. The check-then-insert
// is not transactional; the unique index on friend_code catches the rare race.
func generateUniqueFriendCode(ctx context.Context, repo repository.Repository, draw CodeSource) (string, error) {
	if draw == nil {
		draw = randomFriendCode
	}
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		code := draw()
		taken, err := repo.FriendCodeExists(ctx, code)
		if err != nil {
			return "", internalError("failed to check friend code", err)
		}
		if !taken {
			return code, nil
		}
	}
}
