package webhook

import (
	"fmt"
	"strings"

	"line-reservation-bot/internal/line"
	"line-reservation-bot/internal/model"
)

func rateLimitedReply() []line.Message {
	return []line.Message{line.TextMessage(
		"⚠️ リクエストが多すぎます。1分後に再度お試しください。")}
}

func menuMessage() line.Message {
	m := line.TextMessage("🍽️ ご予約を承ります\n以下からお選びください👇")
	m.QuickReply = &line.QuickReply{Items: []line.QuickReplyItem{
		line.MessageAction("今日 18時 2名", "予約 今日 18時 2名"),
		line.MessageAction("今日 19時 2名", "予約 今日 19時 2名"),
		line.MessageAction("今日 20時 2名", "予約 今日 20時 2名"),
		line.MessageAction("明日 18時 2名", "予約 明日 18時 2名"),
		line.MessageAction("明日 19時 2名", "予約 明日 19時 2名"),
		line.MessageAction("4名で予約", "予約 今日 19時 4名"),
		line.MessageAction("6名で予約", "予約 今日 19時 6名"),
		line.MessageAction("カスタム予約", "予約フォーマット：「予約 [日付] [時間] [人数]」"),
	}}
	return m
}

func menuReply() []line.Message {
	return []line.Message{menuMessage()}
}

func greetingReply() []line.Message {
	return []line.Message{
		line.TextMessage("いらっしゃいませ！👋\nご予約をご希望ですか？"),
		menuMessage(),
	}
}

func formatHelpReply() []line.Message {
	return []line.Message{line.TextMessage(
		"📝 予約フォーマット\n\n「予約 [日付] [時間] [人数]」\n\n例：\n・予約 今日 18時 2名\n・予約 明日 19時 4名")}
}

func thanksReply(openHour, closeHour int, phone string) []line.Message {
	return []line.Message{line.TextMessage(fmt.Sprintf(
		"ご利用ありがとうございました！\n\nまたのご来店を心よりお待ちしております。\n\n営業時間：%d:00〜%d:00\n電話：%s",
		openHour, closeHour, phone))}
}

func cancellationReply(phone string) []line.Message {
	return []line.Message{line.TextMessage(fmt.Sprintf(
		"キャンセルのご依頼ですね。\n\nお手数ですがお電話にて承ります。\n電話：%s", phone))}
}

func validationReply(violations []string) []line.Message {
	return []line.Message{line.TextMessage(
		"❌ 予約できません\n\n" + strings.Join(violations, "\n"))}
}

func conflictReply() []line.Message {
	return []line.Message{line.TextMessage(
		"⚠️ 同じ日に既にご予約があります。\n予約確認をご利用ください。")}
}

func persistenceErrorReply(err error, phone string) []line.Message {
	text := "❌ システムエラーが発生しました。"
	msg := err.Error()
	if strings.Contains(msg, "Duplicate") || strings.Contains(msg, "duplicate") {
		text = "⚠️ 既に同じ予約が存在します。"
	} else if strings.Contains(msg, "constraint") || strings.Contains(msg, "violates") {
		text = "⚠️ 入力データに問題があります。"
	}
	return []line.Message{line.TextMessage(
		fmt.Sprintf("%s\n\nお電話でのご予約：%s", text, phone))}
}

func successReply(r *model.Reservation) []line.Message {
	displayTime := r.Time
	if len(displayTime) >= 5 {
		displayTime = displayTime[:5]
	}
	confirm := line.TextMessage(fmt.Sprintf(
		"✅ ご予約を承りました！\n\n📅 日付: %s\n⏰ 時間: %s\n👥 人数: %d名\n\n予約番号: #%d",
		r.Date, displayTime, r.People, r.ID))

	followUp := line.TextMessage("他にご用件はございますか？")
	followUp.QuickReply = &line.QuickReply{Items: []line.QuickReplyItem{
		line.MessageAction("別の予約", "メニュー"),
		line.MessageAction("予約確認", "予約確認"),
		line.MessageAction("終了", "ありがとうございました"),
	}}

	return []line.Message{confirm, followUp}
}

func statusReply(reservations []model.Reservation) []line.Message {
	if len(reservations) == 0 {
		return []line.Message{line.TextMessage("現在、ご予約はございません。")}
	}

	lines := make([]string, 0, len(reservations))
	for _, r := range reservations {
		displayTime := r.Time
		if len(displayTime) >= 5 {
			displayTime = displayTime[:5]
		}
		lines = append(lines, fmt.Sprintf("📅 %s %s\n👥 %d名\n予約番号: #%d",
			r.Date, displayTime, r.People, r.ID))
	}
	return []line.Message{line.TextMessage(
		"📋 ご予約一覧\n\n" + strings.Join(lines, "\n\n"))}
}

func statusErrorReply() []line.Message {
	return []line.Message{line.TextMessage("❌ 予約の確認に失敗しました。")}
}
