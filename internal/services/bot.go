package services

import (
	"fmt"
	"os"
	"time"

	tele "gopkg.in/telebot.v3"

	initdata "github.com/telegram-mini-apps/init-data-golang"

	"cashreward/internal/models"
)

const (
	textStart = `💰 Welcome to CashReward!

Check in daily, watch ads, spin the wheel and scratch cards to earn coins.

🎁 Your first free spin is already waiting.

‼️ Tip: keep your streak alive — every consecutive day pays more.
`
)

type ServiceBot struct {
	token string
}

func NewServiceBot(token string) (*ServiceBot, error) {
	return &ServiceBot{token}, nil
}

func (bot *ServiceBot) ValidateInitData(dataStr string) (*models.AccountFromAuth, error) {
	if err := initdata.Validate(dataStr, bot.token, 0); err != nil {
		return nil, err
	}

	data, err := initdata.Parse(dataStr)
	if err != nil {
		return nil, err
	}

	return &models.AccountFromAuth{
		ID:        data.User.ID,
		Username:  data.User.Username,
		FirstName: data.User.FirstName,
		LastName:  data.User.LastName,
		IsBot:     data.User.IsBot,
		IsPremium: data.User.IsPremium,
	}, nil
}

func (bot *ServiceBot) SendMsg(chatID int64, text string) error {
	pref := tele.Settings{
		Token:  bot.token,
		Poller: &tele.LongPoller{Timeout: 10 * time.Second},
	}

	b, err := tele.NewBot(pref)
	if err != nil {
		return err
	}

	_, err = b.Send(&tele.User{ID: chatID}, text, &tele.SendOptions{
		ParseMode: tele.ModeHTML,
		ReplyMarkup: &tele.ReplyMarkup{
			InlineKeyboard: [][]tele.InlineButton{
				{{Text: "💰 Open CashReward", WebApp: &tele.WebApp{URL: os.Getenv("TELEGRAM_WEB_APP_URL")}}},
				{{Text: "🔊 Latest news", URL: os.Getenv("TELEGRAM_ANNOUNCEMENT_URL")}},
			},
		},
	})
	if err != nil {
		return err
	}

	return nil
}

func (bot *ServiceBot) SendWelcomeMsg(chatID int64) error {
	return bot.SendMsg(chatID, textStart)
}

func (bot *ServiceBot) SendReferralMessage(chatID int64, tier *ReferralTier) error {
	text := fmt.Sprintf("🎉 A friend just joined with your code!\n\nYou are on the %s tier (%d%% commission).", tier.Name, tier.CommissionPct)
	return bot.SendMsg(chatID, text)
}

func (bot *ServiceBot) SendMilestoneMessage(chatID int64, tier *models.MilestoneTier) error {
	text := fmt.Sprintf("🏆 %s\n\nYour bonuses are already on your account.", tier.Message)
	return bot.SendMsg(chatID, text)
}
