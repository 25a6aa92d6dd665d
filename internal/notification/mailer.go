package notification

import "context"

// 注文確認メールなどの送信。配信保証はしない
type Mailer interface {
	SendEmail(ctx context.Context, to string, subject string, textBody string) error
}
