package notifications

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/9ssi7/exponent"
)

// TokenReader is the slice of the push-token store this package needs.
type TokenReader interface {
	GetForUser(ctx context.Context, userID int64) ([]string, error)
}

// NotifyCartReviewed - notify the cart reporter that someone left a review on
// their cart.
func NotifyCartReviewed(ctx context.Context, push PushSender, tokenStore TokenReader, ownerID int64, cartID int64, cartName, reviewerName string, rating int) error {

	userTokens, err := tokenStore.GetForUser(ctx, ownerID)
	if err != nil {
		return err
	}
	tokens := dedupe(userTokens)
	if len(tokens) == 0 {
		return errors.New("no push tokens")
	}

	msgs := make([]*exponent.Message, 0, len(tokens))
	title := "새 리뷰가 달렸어요"
	body := fmt.Sprintf("%s님이 %s에 별점 %d점을 남겼습니다", reviewerName, cartName, rating)
	screen := fmt.Sprintf("carts/%s", strconv.FormatInt(cartID, 10))
	for _, t := range tokens {
		token := exponent.Token(t)
		msg := &exponent.Message{
			To:    []*exponent.Token{&token},
			Title: title,
			Body:  body,
			Data: map[string]string{
				"type":    "cart_reviewed",
				"cart_id": strconv.FormatInt(cartID, 10),
				"screen":  screen,
			},
		}
		msgs = append(msgs, msg)
	}
	_, err = push.Publish(ctx, msgs)
	return err
}
